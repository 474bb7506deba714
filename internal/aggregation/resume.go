package aggregation

import (
	"context"
	"errors"
	"log/slog"

	coreagg "github.com/aevon-lab/reorder-features/internal/core/aggregation"
	"github.com/aevon-lab/reorder-features/internal/core/storage"
)

func (e *Engine) shouldSkip(ctx context.Context, partitionID int) (bool, error) {
	switch e.opts.Resume {
	case ResumeNone:
		return false, nil
	case ResumeExists:
		return e.store.HasPartition(ctx, partitionID)
	default:
		return e.validComplete(ctx, partitionID)
	}
}

// validComplete reports whether the stored partition matches its completion marker.
// Missing or mismatching results are recomputed, not reported as errors.
func (e *Engine) validComplete(ctx context.Context, partitionID int) (bool, error) {
	marker, err := e.store.ReadMarker(ctx, partitionID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	records, err := e.store.LoadPartition(ctx, partitionID)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrIncomplete) {
		e.reject(partitionID, "unreadable table", err)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if len(records) != marker.RowCount {
		e.reject(partitionID, "row count mismatch", nil)
		return false, nil
	}
	if coreagg.Checksum(records) != marker.Checksum {
		e.reject(partitionID, "checksum mismatch", nil)
		return false, nil
	}
	return true, nil
}

func (e *Engine) reject(partitionID int, reason string, err error) {
	PartitionsRejected.Inc()
	attrs := []any{"partition", partitionID, "reason", reason}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	slog.Warn("[Engine] Stored partition failed validation, recomputing", attrs...)
}
