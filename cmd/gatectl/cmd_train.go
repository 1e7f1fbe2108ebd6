package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/fcs-gates/internal/gate"
	"github.com/danielpatrickdp/fcs-gates/internal/train"
)

func newTrainCommand(a *app) *cobra.Command {
	var (
		all         bool
		dataDir     string
		dataFile    string
		outputDir   string
		minAccuracy float64
	)

	cmd := &cobra.Command{
		Use:   "train [gate]",
		Short: "Train a gate classifier from labeled JSONL",
		Example: `  gatectl train question-depth --data-dir data
  gatectl train --all --data-dir data --output-dir outputs`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir == "" {
				outputDir = a.cfg.ModelDir
			}
			base := train.Options{OutputDir: outputDir, MinAccuracy: minAccuracy, Logger: a.logger}

			if all {
				if len(args) > 0 || dataFile != "" {
					return errors.New("--all takes no gate argument and no --data file")
				}
				var names []string
				for _, spec := range gate.Specs() {
					names = append(names, spec.Name)
				}
				reports, err := train.TrainAll(cmd.Context(), names, dataDir, base)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), reports)
			}

			if len(args) == 0 {
				return errors.New("name a gate or pass --all")
			}
			profile, ok := train.ProfileFor(args[0])
			if !ok {
				return fmt.Errorf("unknown gate %q", args[0])
			}
			opts := base
			opts.DataPath = dataFile
			if opts.DataPath == "" {
				opts.DataPath = filepath.Join(dataDir, profile.LabelFile)
			}
			report, err := train.Run(profile, opts)
			if report != nil {
				if perr := printJSON(cmd.OutOrStdout(), report); perr != nil && err == nil {
					err = perr
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Train every gate concurrently")
	cmd.Flags().StringVar(&dataDir, "data-dir", "data", "Directory holding <gate>_labels.jsonl files")
	cmd.Flags().StringVar(&dataFile, "data", "", "Label file for a single gate (overrides --data-dir)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Artifact directory (default FCS_MODEL_DIR)")
	cmd.Flags().Float64Var(&minAccuracy, "min-accuracy", 0, "Fail without saving when held-out accuracy is lower")
	return cmd
}
