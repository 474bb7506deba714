package storage

import (
	"context"
	"errors"
	"time"

	"github.com/aevon-lab/reorder-features/internal/core/aggregation"
	"github.com/aevon-lab/reorder-features/internal/core/partition"
)

// ErrNotFound is returned when an assignment, partition table, marker or merged table
// has not been written yet.
var ErrNotFound = errors.New("not found")

// ErrIncomplete is returned when a persisted partition does not match its completion marker.
var ErrIncomplete = errors.New("partition result incomplete")

// CompletionMarker is written after a partition table and describes its content.
// A partition is complete only when the stored table matches RowCount and Checksum.
type CompletionMarker struct {
	Partition   int       `yaml:"partition"`
	RunID       string    `yaml:"run_id"`
	RowCount    int       `yaml:"row_count"`
	Checksum    string    `yaml:"checksum"`
	CompletedAt time.Time `yaml:"completed_at"`
}

// AssignmentStore persists the partition assignment of a run.
type AssignmentStore interface {
	// LoadAssignment returns ErrNotFound when no assignment was saved.
	LoadAssignment(ctx context.Context) (partition.Assignment, error)
	SaveAssignment(ctx context.Context, a partition.Assignment) error
}

// ResultStore persists partition tables and the merged table.
//
// Contract: one writer per partition. SavePartition replaces any previous table of the
// same partition and writes the marker only after the table is durable.
type ResultStore interface {
	SavePartition(ctx context.Context, marker CompletionMarker, records []aggregation.FeatureRecord) error

	// LoadPartition returns the stored rows in their written order, or ErrNotFound.
	LoadPartition(ctx context.Context, partitionID int) ([]aggregation.FeatureRecord, error)

	// ReadMarker returns ErrNotFound when the partition has no marker.
	ReadMarker(ctx context.Context, partitionID int) (CompletionMarker, error)

	// HasPartition reports whether anything was persisted for the partition,
	// regardless of validity.
	HasPartition(ctx context.Context, partitionID int) (bool, error)

	SaveMerged(ctx context.Context, records []aggregation.FeatureRecord) error

	// LoadMerged returns ErrNotFound before the first merge.
	LoadMerged(ctx context.Context) ([]aggregation.FeatureRecord, error)

	// QueryUser returns the merged rows of one user in merged order.
	QueryUser(ctx context.Context, userID int64) ([]aggregation.FeatureRecord, error)
}

// Store is a complete persistence backend for the engine.
type Store interface {
	AssignmentStore
	ResultStore
	Close() error
}
