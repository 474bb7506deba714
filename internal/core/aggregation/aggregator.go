package aggregation

import (
	"github.com/aevon-lab/reorder-features/internal/core/history"
	"github.com/shopspring/decimal"
)

// ComputeUser runs the sequential scan over one user's order history and returns one
// feature record per product the user ever purchased, in ascending product id order.
//
// The query basket only contributes its day gap. Historical baskets are then visited
// from most recent to oldest; every tracked product evaluates product, aisle and
// department membership independently.
func ComputeUser(view history.View) []FeatureRecord {
	if len(view.Products) == 0 {
		return nil
	}

	states := make([]*entityState, len(view.Products))
	for i, p := range view.Products {
		states[i] = newEntityState(p)
	}

	if view.Query != nil {
		for _, s := range states {
			s.advanceAll(view.Query.Gap)
		}
	}

	for _, basket := range view.History {
		for _, s := range states {
			s.observe(basket, view.MaxOrdinal)
		}
	}

	records := make([]FeatureRecord, len(states))
	for i, s := range states {
		records[i] = finalize(view.UserID, s)
	}
	return records
}

func finalize(userID int64, s *entityState) FeatureRecord {
	rec := FeatureRecord{
		UserID:                    userID,
		ProductID:                 s.product.ProductID,
		OrderNumber:               s.product.MaxOrdinal,
		DaysSinceProduct:          latchedValue(s.productLevel),
		DaysSinceAisle:            latchedValue(s.aisleLevel),
		DaysSinceDepartment:       latchedValue(s.departmentLevel),
		AvgProductDisplacement:    roundedMean(s.productLevel.displacements),
		AvgAisleDisplacement:      roundedMean(s.aisleLevel.displacements),
		AvgDepartmentDisplacement: roundedMean(s.departmentLevel.displacements),
		ProductSupport:            s.productLevel.support,
		AisleSupport:              s.aisleLevel.support,
		DepartmentSupport:         s.departmentLevel.support,
		StreakLength:              s.streakLength,
		Target:                    s.product.Target,
	}
	if s.ordersSinceLatched {
		rec.OrdersSinceProduct = NullFromInt(s.ordersSince)
	}

	// Published contract: order_aisle_displacement carries the rounded product
	// displacement mean, not an ordinal distance.
	rec.OrderAisleDisplacement = rec.AvgProductDisplacement
	return rec
}

func latchedValue(l levelState) decimal.NullDecimal {
	if !l.latched {
		return decimal.NullDecimal{}
	}
	return NullFromFloat(l.since)
}
