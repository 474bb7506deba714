package aggregation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	coreagg "github.com/aevon-lab/reorder-features/internal/core/aggregation"
	"github.com/aevon-lab/reorder-features/internal/core/history"
	"github.com/aevon-lab/reorder-features/internal/core/partition"
	"github.com/aevon-lab/reorder-features/internal/core/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Engine splits users into persisted partitions and aggregates each partition
// independently. Partitions share only the read-only input rows.
type Engine struct {
	store storage.Store
	opts  EngineOptions
	now   func() time.Time
}

func NewEngine(store storage.Store, opts EngineOptions) *Engine {
	if store == nil {
		panic("aggregation: store must not be nil")
	}
	return &Engine{
		store: store,
		opts:  opts.normalized(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// RunSummary reports what one RunPartitions call did.
type RunSummary struct {
	RunID    string
	Computed []int
	Skipped  []int
	Rows     int
}

// EnsureAssignment returns the persisted assignment, creating it from userOrder on
// the first run. A stored assignment always wins over the configured partition count
// because partitions are defined by membership.
func (e *Engine) EnsureAssignment(ctx context.Context, userOrder []int64) (partition.Assignment, error) {
	asg, err := e.store.LoadAssignment(ctx)
	switch {
	case err == nil:
		if err := asg.Validate(); err != nil {
			return partition.Assignment{}, fmt.Errorf("stored assignment: %w", err)
		}
		if asg.Count != e.opts.PartitionCount {
			slog.Warn("[Engine] Stored assignment differs from configured partition count",
				"stored", asg.Count,
				"configured", e.opts.PartitionCount,
			)
		}
		slog.Info("[Engine] Reusing partition assignment", "partitions", asg.Count, "users", asg.Total())
		return asg, nil
	case errors.Is(err, storage.ErrNotFound):
	default:
		return partition.Assignment{}, fmt.Errorf("load assignment: %w", err)
	}

	asg = partition.Assign(userOrder, e.opts.PartitionCount)
	if err := e.store.SaveAssignment(ctx, asg); err != nil {
		return partition.Assignment{}, fmt.Errorf("save assignment: %w", err)
	}
	slog.Info("[Engine] Created partition assignment", "partitions", asg.Count, "users", asg.Total())
	return asg, nil
}

// Run assigns users (or reuses the stored assignment) and aggregates every partition.
func (e *Engine) Run(ctx context.Context, rows []history.Row) (RunSummary, error) {
	grouped, order := history.GroupByUser(rows)

	asg, err := e.EnsureAssignment(ctx, order)
	if err != nil {
		return RunSummary{}, err
	}

	if unassigned := countUnassigned(asg, order); unassigned > 0 {
		slog.Warn("[Engine] Users missing from stored assignment are not aggregated", "users", unassigned)
	}

	return e.RunPartitions(ctx, asg, grouped)
}

// RunPartitions aggregates every partition of asg with at most WorkerCount running at
// once. The first store error cancels partitions that have not started.
func (e *Engine) RunPartitions(ctx context.Context, asg partition.Assignment, grouped map[int64][]history.Row) (RunSummary, error) {
	summary := RunSummary{RunID: uuid.NewString()}

	slog.Info("[Engine] Starting run",
		"run_id", summary.RunID,
		"partitions", asg.Count,
		"workers", e.opts.WorkerCount,
		"resume_policy", e.opts.Resume,
	)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.WorkerCount)

	for i := 0; i < asg.Count; i++ {
		partitionID := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			skip, err := e.shouldSkip(gctx, partitionID)
			if err != nil {
				return fmt.Errorf("partition %d: %w", partitionID, err)
			}
			if skip {
				PartitionsSkipped.WithLabelValues(string(e.opts.Resume)).Inc()
				slog.Debug("[Engine] Partition already complete", "partition", partitionID)
				mu.Lock()
				summary.Skipped = append(summary.Skipped, partitionID)
				mu.Unlock()
				return nil
			}

			rows, err := e.computeAndSave(gctx, summary.RunID, partitionID, asg.Users(partitionID), grouped)
			if err != nil {
				return fmt.Errorf("partition %d: %w", partitionID, err)
			}
			mu.Lock()
			summary.Computed = append(summary.Computed, partitionID)
			summary.Rows += rows
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}

	slices.Sort(summary.Computed)
	slices.Sort(summary.Skipped)
	PartitionsComplete.Set(float64(len(summary.Computed) + len(summary.Skipped)))

	slog.Info("[Engine] Run complete",
		"run_id", summary.RunID,
		"computed", len(summary.Computed),
		"skipped", len(summary.Skipped),
		"rows", summary.Rows,
	)
	return summary, nil
}

func (e *Engine) computeAndSave(
	ctx context.Context,
	runID string,
	partitionID int,
	users []int64,
	grouped map[int64][]history.Row,
) (int, error) {
	start := time.Now()

	records := ComputePartition(users, grouped)
	marker := storage.CompletionMarker{
		Partition:   partitionID,
		RunID:       runID,
		RowCount:    len(records),
		Checksum:    coreagg.Checksum(records),
		CompletedAt: e.now(),
	}
	if err := e.store.SavePartition(ctx, marker, records); err != nil {
		return 0, fmt.Errorf("save: %w", err)
	}

	elapsed := time.Since(start)
	PartitionsComputed.Inc()
	RowsWritten.Add(float64(len(records)))
	PartitionDuration.Observe(elapsed.Seconds())

	slog.Info("[Engine] Partition complete",
		"partition", partitionID,
		"users", len(users),
		"rows", len(records),
		"duration", elapsed,
	)
	return len(records), nil
}

// ComputePartition aggregates users in ascending id order. Users without rows
// contribute nothing.
func ComputePartition(users []int64, grouped map[int64][]history.Row) []coreagg.FeatureRecord {
	sorted := slices.Clone(users)
	slices.Sort(sorted)

	var records []coreagg.FeatureRecord
	for _, userID := range sorted {
		rows, ok := grouped[userID]
		if !ok {
			continue
		}
		records = append(records, coreagg.ComputeUser(history.BuildView(userID, rows))...)
	}
	return records
}

func countUnassigned(asg partition.Assignment, order []int64) int {
	assigned := make(map[int64]struct{}, asg.Total())
	for _, group := range asg.Groups {
		for _, userID := range group {
			assigned[userID] = struct{}{}
		}
	}
	n := 0
	for _, userID := range order {
		if _, ok := assigned[userID]; !ok {
			n++
		}
	}
	return n
}
