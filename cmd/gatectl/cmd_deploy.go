package main

import (
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/fcs-gates/internal/deploy"
	"github.com/danielpatrickdp/fcs-gates/internal/store"
)

func newDeployCommand(a *app) *cobra.Command {
	var modelsDir string

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Register every trained gate artifact and write azure_models_config.json",
		Long: `Deploy records the shared scoring environment, registers each gate
artifact found in the models directory (uploading it to Azure Blob Storage
when AZURE_STORAGE_ACCOUNT_URL is set) and writes the manifest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if modelsDir == "" {
				modelsDir = a.cfg.ModelDir
			}
			st, err := store.NewStore(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			uploader, err := deploy.UploaderFromConfig(cmd.Context(), a.cfg.Azure)
			if err != nil {
				return err
			}
			manifest, err := deploy.New(st, uploader, a.cfg.Azure, a.logger).DeployAll(cmd.Context(), modelsDir)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), manifest)
		},
	}

	cmd.Flags().StringVar(&modelsDir, "models-dir", "", "Directory with trained artifacts (default FCS_MODEL_DIR)")
	return cmd
}
