package aggregation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	coreagg "github.com/aevon-lab/reorder-features/internal/core/aggregation"
	"github.com/aevon-lab/reorder-features/internal/core/storage"
)

// Merge concatenates all partition tables of the stored assignment in ascending
// partition order and persists the result. Rows are neither reordered nor deduplicated.
func (e *Engine) Merge(ctx context.Context) ([]coreagg.FeatureRecord, error) {
	asg, err := e.store.LoadAssignment(ctx)
	if err != nil {
		return nil, fmt.Errorf("merge: load assignment: %w", err)
	}

	var merged []coreagg.FeatureRecord
	for i := 0; i < asg.Count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := e.store.LoadPartition(ctx, i)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("merge: partition %d has not been computed: %w", i, err)
		}
		if err != nil {
			return nil, fmt.Errorf("merge: load partition %d: %w", i, err)
		}
		merged = append(merged, records...)
	}

	if err := e.store.SaveMerged(ctx, merged); err != nil {
		return nil, fmt.Errorf("merge: save: %w", err)
	}
	MergedRows.Set(float64(len(merged)))

	slog.Info("[Merge] Merged partition tables", "partitions", asg.Count, "rows", len(merged))
	return merged, nil
}
