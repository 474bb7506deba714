package aggregation

import (
	"math"
	"testing"

	"github.com/aevon-lab/reorder-features/internal/core/history"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type line struct {
	order   int
	product int64
	aisle   int64
	dept    int64
	gap     float64
	evalSet string
}

func buildRows(userID int64, orderMax int, lines ...line) []history.Row {
	rows := make([]history.Row, 0, len(lines))
	for i, l := range lines {
		target := history.TargetHistory
		switch l.evalSet {
		case history.EvalSetTrain:
			target = history.TargetTrain
		case history.EvalSetTest:
			target = history.TargetTest
		}
		rows = append(rows, history.Row{
			OrderID:             userID*1000 + int64(l.order),
			ProductID:           l.product,
			UserID:              userID,
			OrderNumber:         l.order,
			AddToCartOrder:      i + 1,
			DaysSincePriorOrder: l.gap,
			EvalSet:             l.evalSet,
			OrderNumberMax:      orderMax,
			AisleID:             l.aisle,
			DepartmentID:        l.dept,
			Target:              target,
		})
	}
	return rows
}

func computeRows(userID int64, orderMax int, lines ...line) map[int64]FeatureRecord {
	records := ComputeUser(history.BuildView(userID, buildRows(userID, orderMax, lines...)))
	out := make(map[int64]FeatureRecord, len(records))
	for _, r := range records {
		out[r.ProductID] = r
	}
	return out
}

func requireNull(t *testing.T, want string, got decimal.NullDecimal, field string) {
	t.Helper()
	if want == "" {
		require.False(t, got.Valid, "%s: want undefined, got %s", field, got.Decimal)
		return
	}
	require.True(t, got.Valid, "%s: want %s, got undefined", field, want)
	require.True(t, decimal.RequireFromString(want).Equal(got.Decimal), "%s: want %s, got %s", field, want, got.Decimal)
}

func TestComputeUser_ReferenceScenario(t *testing.T) {
	const p, q = int64(1), int64(2)
	got := computeRows(7, 4,
		line{order: 4, product: p, aisle: 10, dept: 100, gap: 5, evalSet: history.EvalSetTrain},
		line{order: 3, product: p, aisle: 10, dept: 100, gap: 0, evalSet: history.EvalSetPrior},
		line{order: 2, product: p, aisle: 10, dept: 100, gap: 3, evalSet: history.EvalSetPrior},
		line{order: 1, product: q, aisle: 20, dept: 100, gap: 4, evalSet: history.EvalSetPrior},
	)
	require.Len(t, got, 2)

	rp := got[p]
	require.Equal(t, int64(7), rp.UserID)
	require.Equal(t, 4, rp.OrderNumber)
	requireNull(t, "5", rp.DaysSinceProduct, "days_since_prod")
	requireNull(t, "5", rp.DaysSinceAisle, "days_since_aisle")
	requireNull(t, "5", rp.DaysSinceDepartment, "days_since_department")
	requireNull(t, "1", rp.OrdersSinceProduct, "orders_since_prod")
	requireNull(t, "2.5", rp.AvgProductDisplacement, "avg_prod_disp")
	requireNull(t, "2.5", rp.AvgAisleDisplacement, "avg_aisle_disp")
	requireNull(t, "2.67", rp.AvgDepartmentDisplacement, "avg_dept_disp")
	requireNull(t, "2.5", rp.OrderAisleDisplacement, "order_aisle_displacement")
	require.Equal(t, 2, rp.ProductSupport)
	require.Equal(t, 2, rp.AisleSupport)
	require.Equal(t, 3, rp.DepartmentSupport)
	require.Equal(t, 2, rp.StreakLength)
	require.Equal(t, history.TargetTrain, rp.Target)

	rq := got[q]
	require.Equal(t, 1, rq.OrderNumber)
	requireNull(t, "8", rq.DaysSinceProduct, "days_since_prod")
	requireNull(t, "8", rq.DaysSinceAisle, "days_since_aisle")
	requireNull(t, "5", rq.DaysSinceDepartment, "days_since_department")
	requireNull(t, "3", rq.OrdersSinceProduct, "orders_since_prod")
	requireNull(t, "8", rq.AvgProductDisplacement, "avg_prod_disp")
	requireNull(t, "2.67", rq.AvgDepartmentDisplacement, "avg_dept_disp")
	require.Equal(t, 1, rq.ProductSupport)
	require.Equal(t, 3, rq.DepartmentSupport)
	require.Equal(t, 0, rq.StreakLength)
	require.Equal(t, history.TargetHistory, rq.Target)
}

func TestComputeUser_QueryBasketOnly(t *testing.T) {
	got := computeRows(3, 2,
		line{order: 2, product: 11, aisle: 1, dept: 1, gap: 9, evalSet: history.EvalSetTest},
		line{order: 2, product: 12, aisle: 2, dept: 1, gap: 9, evalSet: history.EvalSetTest},
	)
	require.Len(t, got, 2)
	for id, rec := range got {
		requireNull(t, "", rec.DaysSinceProduct, "days_since_prod")
		requireNull(t, "", rec.DaysSinceAisle, "days_since_aisle")
		requireNull(t, "", rec.DaysSinceDepartment, "days_since_department")
		requireNull(t, "", rec.OrdersSinceProduct, "orders_since_prod")
		requireNull(t, "", rec.AvgProductDisplacement, "avg_prod_disp")
		requireNull(t, "", rec.OrderAisleDisplacement, "order_aisle_displacement")
		require.Zero(t, rec.StreakLength, "product %d", id)
		require.Zero(t, rec.ProductSupport, "product %d", id)
		require.Equal(t, history.TargetTest, rec.Target)
	}
}

func TestComputeUser_Streak(t *testing.T) {
	tests := []struct {
		name       string
		lines      []line
		wantStreak int
	}{
		{
			name: "present in every historical basket",
			lines: []line{
				{order: 5, product: 2, aisle: 1, dept: 1, gap: 7, evalSet: history.EvalSetTest},
				{order: 4, product: 1, aisle: 1, dept: 1, gap: 7, evalSet: history.EvalSetPrior},
				{order: 3, product: 1, aisle: 1, dept: 1, gap: 7, evalSet: history.EvalSetPrior},
				{order: 2, product: 1, aisle: 1, dept: 1, gap: 7, evalSet: history.EvalSetPrior},
				{order: 1, product: 1, aisle: 1, dept: 1, gap: math.NaN(), evalSet: history.EvalSetPrior},
			},
			wantStreak: 4,
		},
		{
			name: "absent from the basket before the query",
			lines: []line{
				{order: 4, product: 2, aisle: 1, dept: 1, gap: 7, evalSet: history.EvalSetTest},
				{order: 3, product: 2, aisle: 1, dept: 1, gap: 7, evalSet: history.EvalSetPrior},
				{order: 2, product: 1, aisle: 1, dept: 1, gap: 7, evalSet: history.EvalSetPrior},
				{order: 1, product: 1, aisle: 1, dept: 1, gap: math.NaN(), evalSet: history.EvalSetPrior},
			},
			wantStreak: 0,
		},
		{
			name: "broken run does not resume",
			lines: []line{
				{order: 5, product: 2, aisle: 1, dept: 1, gap: 7, evalSet: history.EvalSetTest},
				{order: 4, product: 1, aisle: 1, dept: 1, gap: 7, evalSet: history.EvalSetPrior},
				{order: 3, product: 2, aisle: 1, dept: 1, gap: 7, evalSet: history.EvalSetPrior},
				{order: 2, product: 1, aisle: 1, dept: 1, gap: 7, evalSet: history.EvalSetPrior},
				{order: 1, product: 1, aisle: 1, dept: 1, gap: math.NaN(), evalSet: history.EvalSetPrior},
			},
			wantStreak: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := computeRows(1, 0, tc.lines...)
			require.Equal(t, tc.wantStreak, got[1].StreakLength)
		})
	}
}

func TestComputeUser_AisleNeverRecursDepartmentDoes(t *testing.T) {
	got := computeRows(9, 3,
		line{order: 3, product: 1, aisle: 10, dept: 100, gap: 6, evalSet: history.EvalSetTest},
		line{order: 2, product: 2, aisle: 20, dept: 100, gap: 2, evalSet: history.EvalSetPrior},
		line{order: 1, product: 3, aisle: 30, dept: 300, gap: math.NaN(), evalSet: history.EvalSetPrior},
	)

	rec := got[1]
	requireNull(t, "", rec.DaysSinceProduct, "days_since_prod")
	requireNull(t, "", rec.DaysSinceAisle, "days_since_aisle")
	requireNull(t, "6", rec.DaysSinceDepartment, "days_since_department")
	requireNull(t, "6", rec.AvgDepartmentDisplacement, "avg_dept_disp")
	require.Zero(t, rec.AisleSupport)
	require.Equal(t, 1, rec.DepartmentSupport)
}

func TestComputeUser_AisleStateIsPerProduct(t *testing.T) {
	// Products 1 and 2 share aisle 10; each carries its own aisle counters.
	got := computeRows(4, 4,
		line{order: 4, product: 1, aisle: 10, dept: 1, gap: 3, evalSet: history.EvalSetTest},
		line{order: 4, product: 2, aisle: 10, dept: 1, gap: 3, evalSet: history.EvalSetTest},
		line{order: 3, product: 1, aisle: 10, dept: 1, gap: 2, evalSet: history.EvalSetPrior},
		line{order: 2, product: 2, aisle: 10, dept: 1, gap: 4, evalSet: history.EvalSetPrior},
		line{order: 1, product: 1, aisle: 10, dept: 1, gap: math.NaN(), evalSet: history.EvalSetPrior},
	)

	for _, id := range []int64{1, 2} {
		rec := got[id]
		requireNull(t, "3", rec.DaysSinceAisle, "days_since_aisle")
		require.Equal(t, 3, rec.AisleSupport)
		// Aisle displacements 3, 2, 4.
		requireNull(t, "3", rec.AvgAisleDisplacement, "avg_aisle_disp")
	}
	requireNull(t, "3", got[1].DaysSinceProduct, "days_since_prod")
	requireNull(t, "5", got[2].DaysSinceProduct, "days_since_prod")
}

func TestComputeUser_MissingGapsAreSkippedInAverages(t *testing.T) {
	got := computeRows(5, 4,
		line{order: 4, product: 2, aisle: 1, dept: 1, gap: 2, evalSet: history.EvalSetTest},
		line{order: 3, product: 1, aisle: 1, dept: 1, gap: math.NaN(), evalSet: history.EvalSetPrior},
		line{order: 2, product: 1, aisle: 1, dept: 1, gap: 4, evalSet: history.EvalSetPrior},
		line{order: 1, product: 1, aisle: 1, dept: 1, gap: math.NaN(), evalSet: history.EvalSetPrior},
	)

	rec := got[1]
	requireNull(t, "2", rec.DaysSinceProduct, "days_since_prod")
	// Displacements 2, NaN, 4.
	requireNull(t, "3", rec.AvgProductDisplacement, "avg_prod_disp")
	require.Equal(t, 3, rec.ProductSupport)
	require.Equal(t, 3, rec.StreakLength)
}

func TestComputeUser_WithoutQueryBasket(t *testing.T) {
	// Every product of the train basket was filtered upstream: no query rows remain,
	// but order_number_max still points at the held-out basket.
	got := computeRows(8, 4,
		line{order: 3, product: 1, aisle: 1, dept: 1, gap: 6, evalSet: history.EvalSetPrior},
		line{order: 2, product: 1, aisle: 1, dept: 1, gap: 4, evalSet: history.EvalSetPrior},
	)

	rec := got[1]
	requireNull(t, "0", rec.DaysSinceProduct, "days_since_prod")
	requireNull(t, "1", rec.OrdersSinceProduct, "orders_since_prod")
	requireNull(t, "3", rec.AvgProductDisplacement, "avg_prod_disp")
	require.Equal(t, 2, rec.StreakLength)
	require.Equal(t, 3, rec.OrderNumber)
}

func TestComputeUser_ProductsInAscendingOrder(t *testing.T) {
	records := ComputeUser(history.BuildView(1, buildRows(1, 3,
		line{order: 3, product: 30, aisle: 1, dept: 1, gap: 1, evalSet: history.EvalSetTest},
		line{order: 2, product: 10, aisle: 1, dept: 1, gap: 1, evalSet: history.EvalSetPrior},
		line{order: 1, product: 20, aisle: 1, dept: 1, gap: math.NaN(), evalSet: history.EvalSetPrior},
	)))
	require.Len(t, records, 3)
	require.Equal(t, []int64{10, 20, 30}, []int64{records[0].ProductID, records[1].ProductID, records[2].ProductID})
}

func TestComputeUser_EmptyView(t *testing.T) {
	require.Empty(t, ComputeUser(history.View{UserID: 1}))
}

func TestComputeUser_AverageRoundsHalfToEven(t *testing.T) {
	// Product 1 appears in every basket before the query. Only the first
	// observation carries the query gap, so each average is queryGap/baskets.
	tests := []struct {
		name     string
		queryGap float64
		baskets  int
		want     string
	}{
		{name: "one eighth", queryGap: 1, baskets: 8, want: "0.12"},
		{name: "three eighths", queryGap: 3, baskets: 8, want: "0.38"},
		{name: "five eighths", queryGap: 5, baskets: 8, want: "0.62"},
		{name: "seven eighths", queryGap: 7, baskets: 8, want: "0.88"},
		{name: "binary value below the tie", queryGap: 107, baskets: 40, want: "2.67"},
		{name: "no tie", queryGap: 2, baskets: 3, want: "0.67"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			query := tc.baskets + 1
			lines := []line{{order: query, product: 2, aisle: 20, dept: 200, gap: tc.queryGap, evalSet: history.EvalSetTrain}}
			for order := tc.baskets; order >= 1; order-- {
				lines = append(lines, line{order: order, product: 1, aisle: 10, dept: 100, gap: 0, evalSet: history.EvalSetPrior})
			}

			rec := computeRows(6, query, lines...)[1]
			require.Equal(t, tc.baskets, rec.ProductSupport)
			requireNull(t, tc.want, rec.AvgProductDisplacement, "avg_prod_disp")
			requireNull(t, tc.want, rec.AvgAisleDisplacement, "avg_aisle_disp")
			requireNull(t, tc.want, rec.AvgDepartmentDisplacement, "avg_dept_disp")
			requireNull(t, tc.want, rec.OrderAisleDisplacement, "order_aisle_displacement")
		})
	}
}
