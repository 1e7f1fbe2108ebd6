package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/fcs-gates/internal/store"
)

// #region models
func newModelsCommand(a *app) *cobra.Command {
	var (
		name    string
		limit   int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List registered model versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewStore(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			models, err := st.ListModels(name, limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), models)
			}
			if len(models) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "no models registered")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVERSION\tSHA256\tSIZE\tCREATED\tLOCATION")
			for _, m := range models {
				location := m.BlobURL
				if location == "" {
					location = m.Path
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\t%s\n",
					m.Name, m.Version, m.SHA256[:12], m.SizeBytes, m.CreatedAt.Format(time.DateTime), location)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Only list versions of this model")
	cmd.Flags().IntVar(&limit, "limit", 20, "Show at most N versions")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON instead of a table")
	return cmd
}

// #endregion models

// #region decisions
func newDecisionsCommand(a *app) *cobra.Command {
	var (
		gateName string
		limit    int
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "decisions",
		Short: "Show the most recent gate decisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.NewStore(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			decisions, err := st.ListDecisions(gateName, limit)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), decisions)
			}
			if len(decisions) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "no decisions logged")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tGATE\tVIA\tDECISION\tSCORE\tCONF\tREJECTION\tERROR")
			for _, d := range decisions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.3f\t%.3f\t%s\t%s\n",
					d.CreatedAt.Format(time.DateTime), d.Gate, d.Transport, d.Decision,
					d.PrimaryScore, d.Confidence, d.RejectionType, d.Error)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&gateName, "gate", "", "Only show decisions from this gate")
	cmd.Flags().IntVar(&limit, "limit", 20, "Show at most N decisions")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON instead of a table")
	return cmd
}

// #endregion decisions
