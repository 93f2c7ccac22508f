package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lcap17/proyect-viernes/internal/config"
	"github.com/lcap17/proyect-viernes/server"
	"github.com/lcap17/proyect-viernes/tui"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboards over HTTP",
		Long: `Serve every page under /pages/{slug} (HTML) and /pages/{slug}.json,
with Prometheus metrics on /metrics and a health check on /healthz.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}

			if a.cfg.Watch {
				if err := a.loader.Cache.Watch(ctx, a.cfg.DataDir); err != nil {
					a.logger.Warn("file watching disabled", slog.String("error", err.Error()))
				}
			}

			srv := server.New(a.env, a.registry, a.logger)
			return srv.ListenAndServe(ctx, a.cfg.Listen)
		},
	}

	cmd.Flags().String("listen", config.DefaultListen, "HTTP listen address")
	cmd.Flags().Bool("watch", true, "evict cached files when they change")

	return cmd
}

func newTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Filter the simulated census in the terminal",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return tui.Run(cmd.Context(), config.FromContext(cmd.Context()).Seed)
		},
	}
}
