package aggregation

import "github.com/aevon-lab/reorder-features/internal/core/history"

// levelState tracks one hierarchy level (product, aisle or department) of one product.
type levelState struct {
	gap           float64 // running days since the last occurrence seen in the scan
	latched       bool
	since         float64 // gap at the temporally nearest occurrence
	displacements []float64
	support       int
}

// advance adds a basket gap without an occurrence.
func (l *levelState) advance(gap float64) {
	l.gap += gap
}

// observe applies one historical basket. The first occurrence met by the scan
// latches the running gap.
func (l *levelState) observe(present bool, basketGap float64) {
	if !present {
		l.advance(basketGap)
		return
	}

	l.support++
	l.displacements = append(l.displacements, l.gap)

	if !l.latched {
		l.since = l.gap
		l.latched = true
	}

	// Restart from the current basket's own gap: at the next older basket the
	// distance to this occurrence is exactly this gap.
	l.gap = basketGap
}

// entityState is the scan state of one product. Aisle and department levels are
// replicated per product, never shared between products of the same category.
type entityState struct {
	product history.Product

	productLevel    levelState
	aisleLevel      levelState
	departmentLevel levelState

	ordersSinceLatched bool
	ordersSince        int
	streakLength       int
}

func newEntityState(p history.Product) *entityState {
	return &entityState{product: p}
}

func (s *entityState) advanceAll(gap float64) {
	s.productLevel.advance(gap)
	s.aisleLevel.advance(gap)
	s.departmentLevel.advance(gap)
}

func (s *entityState) observe(b *history.Basket, maxOrdinal int) {
	present := b.HasProduct(s.product.ProductID)

	if present {
		if !s.productLevel.latched {
			s.ordersSince = maxOrdinal - b.Ordinal
			s.ordersSinceLatched = true
		}
		if maxOrdinal-b.Ordinal-1 == s.streakLength {
			s.streakLength++
		}
	}
	s.productLevel.observe(present, b.Gap)

	s.aisleLevel.observe(b.HasAisle(s.product.AisleID), b.Gap)
	s.departmentLevel.observe(b.HasDepartment(s.product.DepartmentID), b.Gap)
}
