package partition

import "fmt"

// DefaultCount is the number of user partitions of a run when none is configured.
const DefaultCount = 50

// Assignment is the persisted membership of every partition. Partitions are defined
// by membership, not by a formula: once written, an assignment is reloaded verbatim
// for every later run over the same dataset.
type Assignment struct {
	Count  int       `yaml:"count"`
	Groups [][]int64 `yaml:"groups"`
}

// Assign distributes unique user ids over count partitions with a round-robin stride:
// partition i receives ids[i], ids[i+count], ids[i+2*count], ...
// Stride assignment keeps partitions within one user of each other in size and does
// not cluster neighbouring users of the source ordering into the same partition.
func Assign(userIDs []int64, count int) Assignment {
	if count <= 0 {
		count = DefaultCount
	}
	groups := make([][]int64, count)
	for i := range groups {
		groups[i] = make([]int64, 0, len(userIDs)/count+1)
	}
	for i, id := range userIDs {
		groups[i%count] = append(groups[i%count], id)
	}
	return Assignment{Count: count, Groups: groups}
}

// Users returns the members of partition i.
func (a Assignment) Users(i int) []int64 {
	if i < 0 || i >= len(a.Groups) {
		return nil
	}
	return a.Groups[i]
}

// Total is the number of users across all partitions.
func (a Assignment) Total() int {
	n := 0
	for _, g := range a.Groups {
		n += len(g)
	}
	return n
}

// Validate checks that the assignment is well formed and that partitions are disjoint.
func (a Assignment) Validate() error {
	if a.Count <= 0 {
		return fmt.Errorf("partition assignment: count must be > 0, got %d", a.Count)
	}
	if len(a.Groups) != a.Count {
		return fmt.Errorf("partition assignment: expected %d groups, got %d", a.Count, len(a.Groups))
	}
	seen := make(map[int64]int, a.Total())
	for i, g := range a.Groups {
		for _, id := range g {
			if prev, dup := seen[id]; dup {
				return fmt.Errorf("partition assignment: user %d in partitions %d and %d", id, prev, i)
			}
			seen[id] = i
		}
	}
	return nil
}
