package aggregation

import "github.com/shopspring/decimal"

// FeatureRecord is the per-(user, product) output of the sequential scan.
// Every decimal.NullDecimal field is invalid when the feature is undefined for the pair
// (product never seen in history, empty displacement sequence, missing day gaps).
type FeatureRecord struct {
	UserID                    int64               `json:"user_id"`
	ProductID                 int64               `json:"product_id"`
	OrderNumber               int                 `json:"order_number"`
	DaysSinceProduct          decimal.NullDecimal `json:"days_since_prod"`
	DaysSinceAisle            decimal.NullDecimal `json:"days_since_aisle"`
	DaysSinceDepartment       decimal.NullDecimal `json:"days_since_department"`
	OrderAisleDisplacement    decimal.NullDecimal `json:"order_aisle_displacement"`
	OrdersSinceProduct        decimal.NullDecimal `json:"orders_since_prod"`
	AvgProductDisplacement    decimal.NullDecimal `json:"avg_prod_disp"`
	AvgAisleDisplacement      decimal.NullDecimal `json:"avg_aisle_disp"`
	AvgDepartmentDisplacement decimal.NullDecimal `json:"avg_dept_disp"`
	ProductSupport            int                 `json:"prod_support"`
	AisleSupport              int                 `json:"aisle_support"`
	DepartmentSupport         int                 `json:"dept_support"`
	StreakLength              int                 `json:"streak_length"`
	Target                    int                 `json:"target"`
}
