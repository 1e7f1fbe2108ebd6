package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/fcs-gates/internal/logging"
	"github.com/danielpatrickdp/fcs-gates/internal/mcptools"
	"github.com/danielpatrickdp/fcs-gates/internal/serving"
	"github.com/danielpatrickdp/fcs-gates/internal/store"
)

func newMCPCommand(a *app) *cobra.Command {
	var record bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the gates as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bindings, err := a.cfg.Gates()
			if err != nil {
				return err
			}
			gates, err := serving.LoadGates(bindings, a.logger)
			if err != nil {
				return err
			}

			var recorder *logging.Recorder
			if record {
				st, err := store.NewStore(a.cfg.DBPath)
				if err != nil {
					return err
				}
				defer st.Close()
				recorder = logging.NewRecorder(st.DB(), a.logger)
			}

			return server.ServeStdio(mcptools.NewServer(gates, recorder, version))
		},
	}

	cmd.Flags().BoolVar(&record, "record", true, "Append tool decisions to the decision log")
	return cmd
}
