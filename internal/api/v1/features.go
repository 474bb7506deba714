package v1

import (
	"github.com/aevon-lab/reorder-features/internal/core/aggregation"
	"github.com/shopspring/decimal"
)

// ProductFeatures is the wire form of one merged feature row.
// Undefined features are JSON null, never zero.
type ProductFeatures struct {
	ProductID              int64    `json:"product_id"`
	OrderNumber            int      `json:"order_number"`
	DaysSinceProduct       *float64 `json:"days_since_prod"`
	DaysSinceAisle         *float64 `json:"days_since_aisle"`
	DaysSinceDepartment    *float64 `json:"days_since_department"`
	OrderAisleDisplacement *float64 `json:"order_aisle_displacement"`
	OrdersSinceProduct     *float64 `json:"orders_since_prod"`
	AvgProductDisplacement *float64 `json:"avg_prod_disp"`
	AvgAisleDisplacement   *float64 `json:"avg_aisle_disp"`
	AvgDeptDisplacement    *float64 `json:"avg_dept_disp"`
	ProductSupport         int      `json:"prod_support"`
	AisleSupport           int      `json:"aisle_support"`
	DepartmentSupport      int      `json:"dept_support"`
	StreakLength           int      `json:"streak_length"`
	Target                 int      `json:"target"`
}

// UserFeatures lists a user's rows in merged-table order.
type UserFeatures struct {
	UserID   int64             `json:"user_id"`
	Products int               `json:"products"`
	Features []ProductFeatures `json:"features"`
}

func NewProductFeatures(r aggregation.FeatureRecord) ProductFeatures {
	return ProductFeatures{
		ProductID:              r.ProductID,
		OrderNumber:            r.OrderNumber,
		DaysSinceProduct:       nullable(r.DaysSinceProduct),
		DaysSinceAisle:         nullable(r.DaysSinceAisle),
		DaysSinceDepartment:    nullable(r.DaysSinceDepartment),
		OrderAisleDisplacement: nullable(r.OrderAisleDisplacement),
		OrdersSinceProduct:     nullable(r.OrdersSinceProduct),
		AvgProductDisplacement: nullable(r.AvgProductDisplacement),
		AvgAisleDisplacement:   nullable(r.AvgAisleDisplacement),
		AvgDeptDisplacement:    nullable(r.AvgDepartmentDisplacement),
		ProductSupport:         r.ProductSupport,
		AisleSupport:           r.AisleSupport,
		DepartmentSupport:      r.DepartmentSupport,
		StreakLength:           r.StreakLength,
		Target:                 r.Target,
	}
}

func NewUserFeatures(userID int64, records []aggregation.FeatureRecord) UserFeatures {
	out := UserFeatures{
		UserID:   userID,
		Products: len(records),
		Features: make([]ProductFeatures, 0, len(records)),
	}
	for _, r := range records {
		out.Features = append(out.Features, NewProductFeatures(r))
	}
	return out
}

func nullable(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}
