package filesystem

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aevon-lab/reorder-features/internal/core/aggregation"
	"github.com/aevon-lab/reorder-features/internal/core/partition"
	"github.com/aevon-lab/reorder-features/internal/core/storage"
	"gopkg.in/yaml.v3"
)

const (
	assignmentFile = "assignment.yaml"
	partitionsDir  = "partitions"
	mergedFile     = "joined_current.csv"
)

// Store keeps the assignment, partition tables and merged table under one directory:
//
//	<dir>/assignment.yaml
//	<dir>/partitions/partition_007.csv
//	<dir>/partitions/partition_007.done.yaml
//	<dir>/joined_current.csv
//
// Every file is written to a temporary sibling and renamed into place.
type Store struct {
	dir string
}

var _ storage.Store = (*Store)(nil)

// NewStore creates the directory layout if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("filesystem store: dir is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, partitionsDir), 0o755); err != nil {
		return nil, fmt.Errorf("filesystem store: create %s: %w", dir, err)
	}
	slog.Info("[FileStore] Using result directory", "dir", dir)
	return &Store{dir: dir}, nil
}

func (s *Store) Close() error { return nil }

func (s *Store) tablePath(partitionID int) string {
	return filepath.Join(s.dir, partitionsDir, fmt.Sprintf("partition_%03d.csv", partitionID))
}

func (s *Store) markerPath(partitionID int) string {
	return filepath.Join(s.dir, partitionsDir, fmt.Sprintf("partition_%03d.done.yaml", partitionID))
}

// LoadAssignment reads assignment.yaml.
func (s *Store) LoadAssignment(_ context.Context) (partition.Assignment, error) {
	var a partition.Assignment
	if err := readYAML(filepath.Join(s.dir, assignmentFile), &a); err != nil {
		return partition.Assignment{}, fmt.Errorf("load assignment: %w", err)
	}
	return a, nil
}

// SaveAssignment writes assignment.yaml.
func (s *Store) SaveAssignment(_ context.Context, a partition.Assignment) error {
	if err := writeYAML(filepath.Join(s.dir, assignmentFile), a); err != nil {
		return fmt.Errorf("save assignment: %w", err)
	}
	return nil
}

// SavePartition writes the partition table, then its marker. A stale marker is removed
// first so a crash between the two writes never leaves a marker for the old table.
func (s *Store) SavePartition(_ context.Context, marker storage.CompletionMarker, records []aggregation.FeatureRecord) error {
	if err := os.Remove(s.markerPath(marker.Partition)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("save partition %d: remove stale marker: %w", marker.Partition, err)
	}
	if err := writeTable(s.tablePath(marker.Partition), records); err != nil {
		return fmt.Errorf("save partition %d: %w", marker.Partition, err)
	}
	if err := writeYAML(s.markerPath(marker.Partition), marker); err != nil {
		return fmt.Errorf("save partition %d marker: %w", marker.Partition, err)
	}
	return nil
}

func (s *Store) LoadPartition(_ context.Context, partitionID int) ([]aggregation.FeatureRecord, error) {
	records, err := readTable(s.tablePath(partitionID))
	if err != nil {
		return nil, fmt.Errorf("load partition %d: %w", partitionID, err)
	}
	return records, nil
}

func (s *Store) ReadMarker(_ context.Context, partitionID int) (storage.CompletionMarker, error) {
	var m storage.CompletionMarker
	if err := readYAML(s.markerPath(partitionID), &m); err != nil {
		return storage.CompletionMarker{}, fmt.Errorf("read marker %d: %w", partitionID, err)
	}
	return m, nil
}

func (s *Store) HasPartition(_ context.Context, partitionID int) (bool, error) {
	for _, path := range []string{s.tablePath(partitionID), s.markerPath(partitionID)} {
		_, err := os.Stat(path)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("stat %s: %w", path, err)
		}
	}
	return false, nil
}

func (s *Store) SaveMerged(_ context.Context, records []aggregation.FeatureRecord) error {
	if err := writeTable(filepath.Join(s.dir, mergedFile), records); err != nil {
		return fmt.Errorf("save merged table: %w", err)
	}
	return nil
}

func (s *Store) LoadMerged(_ context.Context) ([]aggregation.FeatureRecord, error) {
	records, err := readTable(filepath.Join(s.dir, mergedFile))
	if err != nil {
		return nil, fmt.Errorf("load merged table: %w", err)
	}
	return records, nil
}

// QueryUser scans the merged table. Intended for inspection, not for serving at volume.
func (s *Store) QueryUser(ctx context.Context, userID int64) ([]aggregation.FeatureRecord, error) {
	merged, err := s.LoadMerged(ctx)
	if err != nil {
		return nil, err
	}
	var out []aggregation.FeatureRecord
	for _, r := range merged {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func writeTable(path string, records []aggregation.FeatureRecord) error {
	return writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(aggregation.Columns); err != nil {
			return err
		}
		for _, r := range records {
			if err := cw.Write(r.Values()); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func readTable(path string) ([]aggregation.FeatureRecord, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = len(aggregation.Columns)
	cr.ReuseRecord = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: missing header: %w", path, storage.ErrIncomplete)
		}
		return nil, fmt.Errorf("%s: read header: %w", path, err)
	}

	var records []aggregation.FeatureRecord
	for {
		values, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", path, storage.ErrIncomplete, err)
		}
		rec, err := aggregation.ParseRecord(values)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", path, storage.ErrIncomplete, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func readYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return storage.ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeYAML(path string, v interface{}) error {
	return writeAtomic(path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	})
}

func writeAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
