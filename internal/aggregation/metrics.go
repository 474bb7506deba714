package aggregation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/aevon-lab/reorder-features/internal/core/storage"
)

var (
	PartitionsComputed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reorder_partitions_computed_total",
		Help: "Partitions aggregated and persisted",
	})

	// Skips by resume policy
	PartitionsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reorder_partitions_skipped_total",
			Help: "Partitions reused from an earlier run",
		},
		[]string{"policy"},
	)

	PartitionsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reorder_partitions_rejected_total",
		Help: "Persisted partitions that failed completion validation and were recomputed",
	})

	RowsWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reorder_feature_rows_written_total",
		Help: "Feature rows written to partition tables",
	})

	PartitionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reorder_partition_duration_seconds",
		Help:    "Time to aggregate and persist one partition",
		Buckets: prometheus.DefBuckets,
	})

	PartitionsComplete = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reorder_partitions_complete",
		Help: "Partitions of the current assignment holding a completion marker",
	})

	MergedRows = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "reorder_merged_rows",
		Help: "Rows in the last merged feature table",
	})

	registerOnce sync.Once
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		PartitionsComputed,
		PartitionsSkipped,
		PartitionsRejected,
		RowsWritten,
		PartitionDuration,
		PartitionsComplete,
		MergedRows,
	}
}

// Init registers the engine collectors with the default registry. Safe to call
// more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(collectors()...)
	})
}

// PushMetrics sends the engine collectors to a Prometheus Pushgateway under job.
// Batch commands exit before any scrape, so this is how their counters leave the
// process.
func PushMetrics(ctx context.Context, url, job string) error {
	pusher := push.New(url, job)
	for _, c := range collectors() {
		pusher = pusher.Collector(c)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	slog.Debug("[Metrics] Pushed engine metrics", "url", url, "job", job)
	return nil
}

// SeedGauges sets the state gauges from what the store already holds, so a
// long-running server reports the results of batch runs made by other processes.
// A store without an assignment or merged table leaves the gauges at zero.
func SeedGauges(ctx context.Context, store storage.Store) error {
	asg, err := store.LoadAssignment(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		PartitionsComplete.Set(0)
	case err != nil:
		return fmt.Errorf("seed metrics: load assignment: %w", err)
	default:
		complete := 0
		for i := 0; i < asg.Count; i++ {
			_, err := store.ReadMarker(ctx, i)
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("seed metrics: read marker %d: %w", i, err)
			}
			complete++
		}
		PartitionsComplete.Set(float64(complete))
	}

	merged, err := store.LoadMerged(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		MergedRows.Set(0)
	case err != nil:
		return fmt.Errorf("seed metrics: load merged table: %w", err)
	default:
		MergedRows.Set(float64(len(merged)))
	}
	return nil
}
