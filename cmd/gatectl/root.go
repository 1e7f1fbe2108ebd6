package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/fcs-gates/internal/config"
	"github.com/danielpatrickdp/fcs-gates/internal/serving"
)

var version = "dev"

// app carries state shared by subcommands after PersistentPreRunE.
type app struct {
	envFile string
	debug   bool
	cfg     config.Config
	logger  *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "gatectl",
		Short: "gatectl - train, score and deploy the FCS gate classifiers",
		Long: `gatectl manages the three FCS gates (decision-gravity, question-depth,
consequence-depth): it trains their classifiers from labeled JSONL, scores
text locally, registers artifacts and serves the gates as MCP tools.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Load environment variables from this file if it exists")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(a.envFile)
		if err != nil {
			return err
		}
		a.cfg = cfg
		level := cfg.SlogLevel()
		if a.debug {
			level = slog.LevelDebug
		}
		// stdout is reserved for command output and the MCP stdio transport.
		a.logger = serving.NewLogger(os.Stderr, level)
		slog.SetDefault(a.logger)
		return nil
	}

	cmd.AddCommand(newTrainCommand(a))
	cmd.AddCommand(newScoreCommand(a))
	cmd.AddCommand(newReplayCommand(a))
	cmd.AddCommand(newDeployCommand(a))
	cmd.AddCommand(newModelsCommand(a))
	cmd.AddCommand(newDecisionsCommand(a))
	cmd.AddCommand(newMCPCommand(a))

	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
