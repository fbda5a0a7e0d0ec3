package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqltree/internal/cli/config"
	"github.com/leapstack-labs/sqltree/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve parse tree rendering over HTTP",
		Long: `Start an HTTP server that renders posted SQL.

Routes:
  GET  /                 form for pasting SQL
  POST /render?format=   render the request body (json, yaml, html, md)
  GET  /catalog          node type catalog as JSON
  GET  /healthz          liveness check`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{LongRunningAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			srv := server.New(server.Config{
				Addr:    cc.Cfg.Serve.Addr,
				Dialect: cc.Cfg.Dialect,
				Render:  cc.Cfg.RenderOptions(),
				Logger:  cc.Logger,
			})
			return srv.Serve(cmd.Context())
		},
	}
	cmd.Flags().String("addr", config.DefaultServeAddr, "Address to listen on")
	return cmd
}
