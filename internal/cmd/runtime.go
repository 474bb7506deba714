package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aevon-lab/reorder-features/internal/aggregation"
	"github.com/aevon-lab/reorder-features/internal/core/history"
	"github.com/aevon-lab/reorder-features/internal/core/storage"
	"github.com/aevon-lab/reorder-features/internal/core/storage/filesystem"
	"github.com/aevon-lab/reorder-features/internal/core/storage/postgres"
	"github.com/aevon-lab/reorder-features/internal/ingestion"
	"github.com/aevon-lab/reorder-features/internal/migrations"
)

// Engine overrides shared by compute and run.
var (
	flagPartitions int
	flagWorkers    int
	flagResume     string
	flagSource     string
)

func addEngineFlags(c *cobra.Command) {
	c.Flags().IntVar(&flagPartitions, "partitions", 0, "Partition count for a new assignment (overrides engine.partition_count)")
	c.Flags().IntVar(&flagWorkers, "workers", 0, "Partitions computed concurrently (overrides engine.worker_count)")
	c.Flags().StringVar(&flagResume, "resume", "", "Resume policy: validate, exists or none (overrides engine.resume_policy)")
	addSourceFlag(c)
}

func addSourceFlag(c *cobra.Command) {
	c.Flags().StringVar(&flagSource, "source", "", "Input CSV (overrides source.path)")
}

// openStore returns the configured result store. The *sql.DB is nil for the
// filesystem store.
func openStore(ctx context.Context) (storage.Store, *sql.DB, error) {
	switch cfg.Storage.Type {
	case "postgres":
		db, err := postgres.Open(cfg.Storage.DSN, cfg.Storage.MaxOpenConns, cfg.Storage.MaxIdleConns)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.Run(db, cfg.Storage.AutoMigrate); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		adapter := postgres.NewAdapter(db)
		if err := adapter.ValidateSchema(ctx); err != nil {
			adapter.Close()
			return nil, nil, err
		}
		return adapter, db, nil
	default:
		store, err := filesystem.NewStore(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
}

func engineOptions(c *cobra.Command) (aggregation.EngineOptions, error) {
	opts := aggregation.EngineOptions{
		PartitionCount: cfg.Engine.PartitionCount,
		WorkerCount:    cfg.Engine.WorkerCount,
	}
	policy := cfg.Engine.ResumePolicy

	if c.Flags().Lookup("partitions") != nil && c.Flags().Changed("partitions") {
		opts.PartitionCount = flagPartitions
	}
	if c.Flags().Lookup("workers") != nil && c.Flags().Changed("workers") {
		opts.WorkerCount = flagWorkers
	}
	if c.Flags().Lookup("resume") != nil && c.Flags().Changed("resume") {
		policy = flagResume
	}

	resume, err := aggregation.ParseResumePolicy(policy)
	if err != nil {
		return aggregation.EngineOptions{}, err
	}
	opts.Resume = resume

	if opts.PartitionCount <= 0 {
		return aggregation.EngineOptions{}, fmt.Errorf("partition count must be > 0, got %d", opts.PartitionCount)
	}
	if opts.WorkerCount <= 0 {
		return aggregation.EngineOptions{}, fmt.Errorf("worker count must be > 0, got %d", opts.WorkerCount)
	}
	return opts, nil
}

func loadRows(c *cobra.Command) ([]history.Row, error) {
	path := cfg.Source.Path
	if c.Flags().Lookup("source") != nil && c.Flags().Changed("source") {
		path = flagSource
	}
	return ingestion.LoadFile(path)
}

// pushMetrics publishes engine metrics when metrics.push_url is configured. The
// run's results are already persisted, so a failed push only logs.
func pushMetrics(ctx context.Context) {
	if cfg.Metrics.PushURL == "" {
		return
	}
	if err := aggregation.PushMetrics(ctx, cfg.Metrics.PushURL, cfg.Metrics.Job); err != nil {
		slog.Warn("[Metrics] Push failed", "error", err)
	}
}
