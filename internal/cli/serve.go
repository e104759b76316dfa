package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/discogstools/config"
	"github.com/jonwraymond/discogstools/observe"
)

func newServeCmd(flags *rootFlags, version string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools over HTTP",
		Long: `Serve the tools on POST /mcp (JSON-RPC 2.0), health probes on /healthz,
/readyz and /health, and Prometheus metrics on /metrics. The server stops
gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := flags.newApp(ctx, version, cmd.ErrOrStderr(), func(c *config.Config) {
				if addr != "" {
					c.Server.Addr = addr
				}
			})
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(context.WithoutCancel(ctx)); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: telemetry shutdown: %v\n", err)
				}
			}()

			srv, err := a.Server()
			if err != nil {
				return err
			}
			a.Logger.Info(ctx, "discogs-tools starting",
				observe.Field{Key: "version", Value: version},
				observe.Field{Key: "addr", Value: a.Config.Server.Addr},
				observe.Field{Key: "authenticated_upstream", Value: a.Client.Authenticated()},
				observe.Field{Key: "auth_required", Value: a.Authenticator != nil},
			)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}
