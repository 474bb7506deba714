package history

import "math"

// Eval set labels carried by every input row.
const (
	EvalSetPrior = "prior"
	EvalSetTrain = "train"
	EvalSetTest  = "test"
)

// Target labels fixed per (user, product) by the assembly stage.
const (
	TargetHistory = 0
	TargetTrain   = 1
	TargetTest    = 2
)

// Row is one (order, product) line of the flat assembly table.
// Integer columns the assembly leaves empty (the synthetic test-basket rows carry no
// cart position) decode as zero. DaysSincePriorOrder is NaN when missing.
type Row struct {
	OrderID             int64   `validate:"gt=0"`
	ProductID           int64   `validate:"gt=0"`
	UserID              int64   `validate:"gt=0"`
	OrderNumber         int     `validate:"gt=0"`
	AddToCartOrder      int     `validate:"gte=0"`
	Reordered           int     `validate:"gte=0,lte=1"`
	DaysSincePriorOrder float64 // NaN when missing
	EvalSet             string  `validate:"oneof=prior train test"`
	OrderDOW            int     `validate:"gte=0,lte=6"`
	OrderHourOfDay      int     `validate:"gte=0,lte=23"`
	OrderNumberMax      int     `validate:"gte=0"`
	OrderSize           int     `validate:"gte=0"`
	AisleID             int64   `validate:"gt=0"`
	DepartmentID        int64   `validate:"gt=0"`
	Target              int     `validate:"gte=0,lte=2"`
}

// IsQuery reports whether the row belongs to a held-out train/test basket.
func (r Row) IsQuery() bool {
	return r.EvalSet == EvalSetTrain || r.EvalSet == EvalSetTest
}

// Basket is one order of a user: the products bought together plus the order's
// position and its gap in days since the previous order.
type Basket struct {
	Ordinal     int
	Gap         float64 // NaN when the source has no prior-order gap
	Products    map[int64]struct{}
	Aisles      map[int64]struct{}
	Departments map[int64]struct{}
}

func newBasket(ordinal int) *Basket {
	return &Basket{
		Ordinal:     ordinal,
		Gap:         math.NaN(),
		Products:    make(map[int64]struct{}),
		Aisles:      make(map[int64]struct{}),
		Departments: make(map[int64]struct{}),
	}
}

func (b *Basket) HasProduct(id int64) bool {
	_, ok := b.Products[id]
	return ok
}

func (b *Basket) HasAisle(id int64) bool {
	_, ok := b.Aisles[id]
	return ok
}

func (b *Basket) HasDepartment(id int64) bool {
	_, ok := b.Departments[id]
	return ok
}

// Product describes one product the user has ever purchased, resolved over every
// row that mentions it. Conflicting aisle/department/target values resolve to the max.
type Product struct {
	ProductID    int64
	AisleID      int64
	DepartmentID int64
	MaxOrdinal   int
	Target       int
}

// View is the order history of a single user ready for a most-recent-first scan.
type View struct {
	UserID int64

	// Query is the held-out basket. Nil when the user has no query rows, e.g. when
	// every product of a train basket was a first-time purchase and got filtered upstream.
	Query *Basket

	// History holds the observed baskets in descending ordinal order.
	History []*Basket

	// MaxOrdinal is the highest ordinal of the user, query basket included.
	MaxOrdinal int

	// Products is sorted by ascending product id.
	Products []Product
}
