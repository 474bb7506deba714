package aggregation

import (
	"fmt"

	"github.com/aevon-lab/reorder-features/internal/core/partition"
)

const defaultWorkerCount = 4

// ResumePolicy decides whether a partition persisted by an earlier run is reused.
type ResumePolicy string

const (
	// ResumeValidate skips a partition only when its stored table matches the
	// completion marker row count and checksum.
	ResumeValidate ResumePolicy = "validate"
	// ResumeExists skips any partition with a stored table or marker.
	ResumeExists ResumePolicy = "exists"
	// ResumeNone recomputes every partition.
	ResumeNone ResumePolicy = "none"
)

func ParseResumePolicy(s string) (ResumePolicy, error) {
	switch p := ResumePolicy(s); p {
	case ResumeValidate, ResumeExists, ResumeNone:
		return p, nil
	case "":
		return ResumeValidate, nil
	default:
		return "", fmt.Errorf("unknown resume policy %q (want validate, exists or none)", s)
	}
}

// EngineOptions controls partitioning and parallelism of a run.
type EngineOptions struct {
	PartitionCount int
	WorkerCount    int
	Resume         ResumePolicy
}

func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		PartitionCount: partition.DefaultCount,
		WorkerCount:    defaultWorkerCount,
		Resume:         ResumeValidate,
	}
}

func (o EngineOptions) normalized() EngineOptions {
	n := o
	if n.PartitionCount <= 0 {
		n.PartitionCount = partition.DefaultCount
	}
	if n.WorkerCount <= 0 {
		n.WorkerCount = defaultWorkerCount
	}
	if n.Resume == "" {
		n.Resume = ResumeValidate
	}
	return n
}
