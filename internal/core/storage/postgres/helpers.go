package postgres

import (
	"github.com/aevon-lab/reorder-features/internal/core/aggregation"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanFeatureRow scans one row selected in featureColumns order.
// NULL numeric columns scan into invalid decimal.NullDecimal values.
func scanFeatureRow(row scanner) (aggregation.FeatureRecord, error) {
	var r aggregation.FeatureRecord
	err := row.Scan(
		&r.UserID,
		&r.ProductID,
		&r.OrderNumber,
		&r.DaysSinceProduct,
		&r.DaysSinceAisle,
		&r.DaysSinceDepartment,
		&r.OrderAisleDisplacement,
		&r.OrdersSinceProduct,
		&r.AvgProductDisplacement,
		&r.AvgAisleDisplacement,
		&r.AvgDepartmentDisplacement,
		&r.ProductSupport,
		&r.AisleSupport,
		&r.DepartmentSupport,
		&r.StreakLength,
		&r.Target,
	)
	return r, err
}

// featureArgs returns the record values in featureColumns order.
func featureArgs(r aggregation.FeatureRecord) []interface{} {
	return []interface{}{
		r.UserID,
		r.ProductID,
		r.OrderNumber,
		r.DaysSinceProduct,
		r.DaysSinceAisle,
		r.DaysSinceDepartment,
		r.OrderAisleDisplacement,
		r.OrdersSinceProduct,
		r.AvgProductDisplacement,
		r.AvgAisleDisplacement,
		r.AvgDepartmentDisplacement,
		r.ProductSupport,
		r.AisleSupport,
		r.DepartmentSupport,
		r.StreakLength,
		r.Target,
	}
}
