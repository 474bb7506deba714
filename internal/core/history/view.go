package history

import (
	"math"
	"sort"
)

// BuildView groups the rows of one user into baskets and resolves the product list.
// Rows may arrive in any order; rows for other users must already be filtered out.
func BuildView(userID int64, rows []Row) View {
	view := View{UserID: userID}

	baskets := make(map[int]*Basket)
	queryOrdinals := make(map[int]bool)
	products := make(map[int64]*Product)

	for _, r := range rows {
		b, ok := baskets[r.OrderNumber]
		if !ok {
			b = newBasket(r.OrderNumber)
			baskets[r.OrderNumber] = b
		}
		b.Gap = nanMax(b.Gap, r.DaysSincePriorOrder)
		b.Products[r.ProductID] = struct{}{}
		b.Aisles[r.AisleID] = struct{}{}
		b.Departments[r.DepartmentID] = struct{}{}
		if r.IsQuery() {
			queryOrdinals[r.OrderNumber] = true
		}

		p, ok := products[r.ProductID]
		if !ok {
			products[r.ProductID] = &Product{
				ProductID:    r.ProductID,
				AisleID:      r.AisleID,
				DepartmentID: r.DepartmentID,
				MaxOrdinal:   r.OrderNumber,
				Target:       r.Target,
			}
		} else {
			p.AisleID = max(p.AisleID, r.AisleID)
			p.DepartmentID = max(p.DepartmentID, r.DepartmentID)
			p.MaxOrdinal = max(p.MaxOrdinal, r.OrderNumber)
			p.Target = max(p.Target, r.Target)
		}

		view.MaxOrdinal = max(view.MaxOrdinal, r.OrderNumberMax, r.OrderNumber)
	}

	ordinals := make([]int, 0, len(baskets))
	for ord := range baskets {
		ordinals = append(ordinals, ord)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ordinals)))

	for _, ord := range ordinals {
		if queryOrdinals[ord] {
			// Only the most recent held-out basket is the query basket.
			if view.Query == nil {
				view.Query = baskets[ord]
			}
			continue
		}
		view.History = append(view.History, baskets[ord])
	}

	view.Products = make([]Product, 0, len(products))
	for _, p := range products {
		view.Products = append(view.Products, *p)
	}
	sort.Slice(view.Products, func(i, j int) bool {
		return view.Products[i].ProductID < view.Products[j].ProductID
	})

	return view
}

// GroupByUser splits rows per user and returns the user ids in order of first appearance.
func GroupByUser(rows []Row) (map[int64][]Row, []int64) {
	grouped := make(map[int64][]Row)
	var order []int64
	for _, r := range rows {
		if _, ok := grouped[r.UserID]; !ok {
			order = append(order, r.UserID)
		}
		grouped[r.UserID] = append(grouped[r.UserID], r)
	}
	return grouped, order
}

// nanMax returns the larger value, ignoring NaN operands.
func nanMax(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	}
	return math.Max(a, b)
}
