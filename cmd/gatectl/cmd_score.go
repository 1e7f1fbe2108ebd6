package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/fcs-gates/internal/config"
	"github.com/danielpatrickdp/fcs-gates/internal/gate"
	"github.com/danielpatrickdp/fcs-gates/internal/logging"
	"github.com/danielpatrickdp/fcs-gates/internal/rpc"
	"github.com/danielpatrickdp/fcs-gates/internal/serving"
	"github.com/danielpatrickdp/fcs-gates/internal/store"
)

func newScoreCommand(a *app) *cobra.Command {
	var (
		artifact string
		noJitter bool
		record   bool
		remote   string
	)

	cmd := &cobra.Command{
		Use:   "score <gate> <text>",
		Short: "Score one text against a local gate artifact or a remote gate server",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, ok := gate.ByName(args[0])
			if !ok {
				return fmt.Errorf("unknown gate %q", args[0])
			}
			if remote != "" {
				return scoreRemote(cmd, remote, spec.Name, args[1])
			}
			binding, err := bindingFor(a.cfg, spec, artifact)
			if err != nil {
				return err
			}

			var opts []gate.Option
			if noJitter {
				opts = append(opts, gate.WithJitter(gate.NoJitter))
			}
			gates, err := serving.LoadGates([]config.GateBinding{binding}, a.logger, opts...)
			if err != nil {
				return err
			}
			res := gates[0].EvaluateText(args[1])

			if record {
				st, err := store.NewStore(a.cfg.DBPath)
				if err != nil {
					return err
				}
				defer st.Close()
				logging.NewRecorder(st.DB(), a.logger).Record("cli", "", res)
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&artifact, "artifact", "", "Artifact path (default from FCS_MODEL_DIR or the gates file)")
	cmd.Flags().BoolVar(&noJitter, "no-jitter", false, "Make dimension sub-scores deterministic")
	cmd.Flags().BoolVar(&record, "record", false, "Append the decision to the decision log")
	cmd.Flags().StringVar(&remote, "remote", "", "Score through the gRPC gate server at this address")
	cmd.MarkFlagsMutuallyExclusive("remote", "artifact")
	cmd.MarkFlagsMutuallyExclusive("remote", "no-jitter")
	cmd.MarkFlagsMutuallyExclusive("remote", "record")
	return cmd
}

// scoreRemote asks a running gate server to score text. The server records
// the decision itself.
func scoreRemote(cmd *cobra.Command, addr, gateName, text string) error {
	client, err := rpc.NewClient(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	res, err := client.Evaluate(ctx, gateName, text, "")
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}

// bindingFor resolves a gate's artifact from an explicit path or the config.
func bindingFor(cfg config.Config, spec gate.Spec, artifact string) (config.GateBinding, error) {
	if artifact != "" {
		return config.GateBinding{Spec: spec, ArtifactPath: artifact}, nil
	}
	bindings, err := cfg.Gates()
	if err != nil {
		return config.GateBinding{}, err
	}
	for _, b := range bindings {
		if b.Spec.Name == spec.Name {
			return b, nil
		}
	}
	return config.GateBinding{}, fmt.Errorf("gate %s is disabled in %s", spec.Name, cfg.GatesFile)
}
