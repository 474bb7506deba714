package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aevon-lab/reorder-features/internal/core/aggregation"
	"github.com/aevon-lab/reorder-features/internal/core/storage"
)

// SavePartition replaces the rows and marker of one partition in a single transaction.
func (a *Adapter) SavePartition(ctx context.Context, marker storage.CompletionMarker, records []aggregation.FeatureRecord) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save partition %d: begin tx: %w", marker.Partition, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, queryDeleteMarker, marker.Partition); err != nil {
		return fmt.Errorf("save partition %d: delete marker: %w", marker.Partition, err)
	}
	if _, err := tx.ExecContext(ctx, queryDeleteResults, marker.Partition); err != nil {
		return fmt.Errorf("save partition %d: delete rows: %w", marker.Partition, err)
	}

	stmt, err := tx.PrepareContext(ctx, copyResults)
	if err != nil {
		return fmt.Errorf("save partition %d: prepare copy: %w", marker.Partition, err)
	}
	for seq, r := range records {
		args := append([]interface{}{marker.Partition, seq}, featureArgs(r)...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			stmt.Close()
			return fmt.Errorf("save partition %d: copy row %d: %w", marker.Partition, seq, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("save partition %d: flush copy: %w", marker.Partition, err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("save partition %d: close copy: %w", marker.Partition, err)
	}

	if _, err := tx.ExecContext(ctx, queryInsertMarker,
		marker.Partition,
		marker.RunID,
		marker.RowCount,
		marker.Checksum,
		marker.CompletedAt,
	); err != nil {
		return fmt.Errorf("save partition %d: write marker: %w", marker.Partition, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save partition %d: commit: %w", marker.Partition, err)
	}

	slog.Debug("[Postgres] Saved partition", "partition", marker.Partition, "rows", len(records))
	return nil
}

// LoadPartition returns ErrNotFound when the partition has no marker and no rows.
func (a *Adapter) LoadPartition(ctx context.Context, partitionID int) ([]aggregation.FeatureRecord, error) {
	records, err := a.queryFeatures(ctx, queryLoadPartition, partitionID)
	if err != nil {
		return nil, fmt.Errorf("load partition %d: %w", partitionID, err)
	}
	if len(records) == 0 {
		has, err := a.HasPartition(ctx, partitionID)
		if err != nil {
			return nil, err
		}
		if !has {
			return nil, fmt.Errorf("load partition %d: %w", partitionID, storage.ErrNotFound)
		}
	}
	return records, nil
}

func (a *Adapter) ReadMarker(ctx context.Context, partitionID int) (storage.CompletionMarker, error) {
	var m storage.CompletionMarker
	err := a.db.QueryRowContext(ctx, queryReadMarker, partitionID).Scan(
		&m.Partition,
		&m.RunID,
		&m.RowCount,
		&m.Checksum,
		&m.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.CompletionMarker{}, fmt.Errorf("read marker %d: %w", partitionID, storage.ErrNotFound)
	}
	if err != nil {
		return storage.CompletionMarker{}, fmt.Errorf("read marker %d: %w", partitionID, err)
	}
	return m, nil
}

func (a *Adapter) HasPartition(ctx context.Context, partitionID int) (bool, error) {
	var has bool
	if err := a.db.QueryRowContext(ctx, queryHasPartition, partitionID).Scan(&has); err != nil {
		return false, fmt.Errorf("check partition %d: %w", partitionID, err)
	}
	return has, nil
}

// SaveMerged replaces the merged table in one transaction.
func (a *Adapter) SaveMerged(ctx context.Context, records []aggregation.FeatureRecord) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save merged: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, queryTruncateMerged); err != nil {
		return fmt.Errorf("save merged: truncate: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, copyMerged)
	if err != nil {
		return fmt.Errorf("save merged: prepare copy: %w", err)
	}
	for seq, r := range records {
		args := append([]interface{}{seq}, featureArgs(r)...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			stmt.Close()
			return fmt.Errorf("save merged: copy row %d: %w", seq, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("save merged: flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("save merged: close copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save merged: commit: %w", err)
	}

	slog.Info("[Postgres] Saved merged table", "rows", len(records))
	return nil
}

// LoadMerged returns ErrNotFound while the merged table is empty.
func (a *Adapter) LoadMerged(ctx context.Context) ([]aggregation.FeatureRecord, error) {
	records, err := a.queryFeatures(ctx, queryLoadMerged)
	if err != nil {
		return nil, fmt.Errorf("load merged: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("load merged: %w", storage.ErrNotFound)
	}
	return records, nil
}

// QueryUser returns ErrNotFound before the first merge, and no rows for a user
// absent from a merged table.
func (a *Adapter) QueryUser(ctx context.Context, userID int64) ([]aggregation.FeatureRecord, error) {
	records, err := a.queryFeatures(ctx, queryMergedByUser, userID)
	if err != nil {
		return nil, fmt.Errorf("query user %d: %w", userID, err)
	}
	if len(records) > 0 {
		return records, nil
	}

	var merged bool
	if err := a.db.QueryRowContext(ctx, queryMergedExists).Scan(&merged); err != nil {
		return nil, fmt.Errorf("query user %d: check merged table: %w", userID, err)
	}
	if !merged {
		return nil, fmt.Errorf("query user %d: merged table: %w", userID, storage.ErrNotFound)
	}
	return records, nil
}

func (a *Adapter) queryFeatures(ctx context.Context, query string, args ...interface{}) ([]aggregation.FeatureRecord, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []aggregation.FeatureRecord
	for rows.Next() {
		r, err := scanFeatureRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return records, nil
}
