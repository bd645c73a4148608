package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jonathan/resume-tailor/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		port    int
		migrate bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long:  "Starts an HTTP server exposing resume, job and tailoring endpoints. DATABASE_URL is optional; without it only /health and /metrics are useful.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, root, appOptions{metrics: true})
			if err != nil {
				return err
			}
			defer a.Close()

			deps := server.Deps{Pipeline: a.pipeline, Metrics: a.metrics, Logger: a.logger}
			if a.cfg.Database.URL != "" {
				if err := a.openStore(ctx); err != nil {
					return err
				}
				if migrate {
					if err := a.store.Migrate(ctx); err != nil {
						return fmt.Errorf("failed to migrate: %w", err)
					}
				}
				deps.Store = a.store
			} else {
				a.logger.Warn("DATABASE_URL not set, persistence endpoints are disabled")
			}

			cfg := a.cfg.Server
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			a.logger.Info("starting API", zap.Int("port", cfg.Port))
			return server.New(cfg, deps).Start(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (overrides PORT)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply migrations before serving")
	return cmd
}
