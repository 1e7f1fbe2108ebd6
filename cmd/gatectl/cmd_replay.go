package main

import (
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/fcs-gates/internal/config"
	"github.com/danielpatrickdp/fcs-gates/internal/gate"
	"github.com/danielpatrickdp/fcs-gates/internal/replay"
	"github.com/danielpatrickdp/fcs-gates/internal/serving"
)

func newReplayCommand(a *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "replay <fixture.json>",
		Short: "Run a regression fixture through the trained gates",
		Long: `Replay scores every fixture case with the gate it names and compares the
decision (and, for question-depth, the rejection type) with the expected
one. Exits 1 when any case disagrees.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := replay.LoadFixture(args[0])
			if err != nil {
				return err
			}

			needed := make(map[string]bool)
			for _, c := range f.Cases {
				needed[c.Gate] = true
			}
			bindings, err := a.cfg.Gates()
			if err != nil {
				return err
			}
			var selected []config.GateBinding
			for _, b := range bindings {
				if needed[b.Spec.Name] {
					selected = append(selected, b)
				}
			}
			loaded, err := serving.LoadGates(selected, a.logger, gate.WithJitter(gate.NoJitter))
			if err != nil {
				return err
			}
			gates := make(map[string]*gate.Gate, len(loaded))
			for _, g := range loaded {
				gates[g.Spec().Name] = g
			}

			results := replay.Replay(gates, f.Cases)
			summary, err := replay.Summarize(results)
			if err != nil {
				return err
			}

			out := map[string]any{"description": f.Description, "summary": summary}
			if verbose {
				out["results"] = results
			} else {
				var failed []replay.ReplayResult
				for _, r := range results {
					if r.Action == "mismatch" || r.Action == "error" {
						failed = append(failed, r)
					}
				}
				out["failed"] = failed
			}
			if err := printJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if n := summary.Mismatches + summary.Errors; n > 0 {
				return &RegressionError{Mismatches: n}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every case, not only failures")
	return cmd
}
