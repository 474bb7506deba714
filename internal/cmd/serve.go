package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aevon-lab/reorder-features/internal/aggregation"
	"github.com/aevon-lab/reorder-features/internal/projection"
	"github.com/aevon-lab/reorder-features/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve merged features over HTTP",
	Long: `Serve the merged feature table:

  GET /health
  GET /metrics
  GET /v1/users/:user_id/features
  GET /v1/users/:user_id/features/:product_id`,
	RunE: runServe,
}

func runServe(c *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(c.Context())
	defer cancel()

	store, db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := aggregation.SeedGauges(ctx, store); err != nil {
		slog.Warn("[Metrics] Failed to seed gauges from store", "error", err)
	}

	srv := server.New(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port), db, cfg.Server.Mode)
	projection.NewService(store).RegisterRoutes(srv.Engine)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		select {
		case <-quit:
			slog.Info("Signal received, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return srv.Run(ctx)
}
