package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aevon-lab/reorder-features/internal/core/partition"
	"github.com/aevon-lab/reorder-features/internal/core/storage"
)

// LoadAssignment reads the persisted partition membership.
func (a *Adapter) LoadAssignment(ctx context.Context) (partition.Assignment, error) {
	var count int
	err := a.db.QueryRowContext(ctx, queryLoadAssignmentCount).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return partition.Assignment{}, fmt.Errorf("load assignment: %w", storage.ErrNotFound)
	}
	if err != nil {
		return partition.Assignment{}, fmt.Errorf("load assignment: read count: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, queryLoadAssignment)
	if err != nil {
		return partition.Assignment{}, fmt.Errorf("load assignment: %w", err)
	}
	defer rows.Close()

	groups := make([][]int64, count)
	for rows.Next() {
		var (
			partitionID int
			userID      int64
		)
		if err := rows.Scan(&partitionID, &userID); err != nil {
			return partition.Assignment{}, fmt.Errorf("load assignment: scan row: %w", err)
		}
		if partitionID < 0 || partitionID >= count {
			return partition.Assignment{}, fmt.Errorf("load assignment: partition %d out of range [0, %d)", partitionID, count)
		}
		groups[partitionID] = append(groups[partitionID], userID)
	}
	if err := rows.Err(); err != nil {
		return partition.Assignment{}, fmt.Errorf("load assignment: iterate rows: %w", err)
	}

	for i := range groups {
		if groups[i] == nil {
			groups[i] = []int64{}
		}
	}
	return partition.Assignment{Count: count, Groups: groups}, nil
}

// SaveAssignment replaces the stored assignment in one transaction.
func (a *Adapter) SaveAssignment(ctx context.Context, asg partition.Assignment) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save assignment: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, queryDeleteAssignment); err != nil {
		return fmt.Errorf("save assignment: clear members: %w", err)
	}
	if _, err := tx.ExecContext(ctx, queryDeleteAssignmentMeta); err != nil {
		return fmt.Errorf("save assignment: clear meta: %w", err)
	}
	if _, err := tx.ExecContext(ctx, queryInsertAssignmentMeta, asg.Count, time.Now().UTC()); err != nil {
		return fmt.Errorf("save assignment: write meta: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, copyAssignments)
	if err != nil {
		return fmt.Errorf("save assignment: prepare copy: %w", err)
	}
	for partitionID, group := range asg.Groups {
		for position, userID := range group {
			if _, err := stmt.ExecContext(ctx, partitionID, position, userID); err != nil {
				stmt.Close()
				return fmt.Errorf("save assignment: copy user %d: %w", userID, err)
			}
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("save assignment: flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("save assignment: close copy: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save assignment: commit: %w", err)
	}

	slog.Info("[Postgres] Saved partition assignment", "partitions", asg.Count, "users", asg.Total())
	return nil
}
