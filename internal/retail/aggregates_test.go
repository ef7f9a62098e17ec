package retail

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"retailetl/internal/transformer/builtin"
	"retailetl/pkg/records"
)

func enrichedRows(cols []string, rows ...[]any) records.Table {
	recs := make([]records.Record, len(rows))
	for i, row := range rows {
		r := records.Record{}
		for j, c := range cols {
			r[c] = row[j]
		}
		recs[i] = r
	}
	return records.New(cols, recs)
}

// TestProductPerformance_Example runs the two-sale example end to end from
// clean tables through the join.
func TestProductPerformance_Example(t *testing.T) {
	t.Parallel()

	x, _ := newTransformer(t)
	ts := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	sales := enrichedRows(
		[]string{"sales_id", "product_id", "region", "quantity", "price", "timestamp", "discount", "order_status", "total_sales"},
		[]any{int64(1), int64(101), "north", int64(2), 50.0, ts, 0.0, "completed", 100.0},
		[]any{int64(2), int64(101), "north", int64(3), 50.0, ts, 0.0, "completed", 150.0},
	)
	products := enrichedRows(
		[]string{"product_id", "category", "brand", "rating", "in_stock", "launch_date"},
		[]any{int64(101), "electronics", "ACME", 4.0, true, ts.AddDate(-1, 0, 0)},
	)
	merged, err := x.Merge(sales, products)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	res, err := x.ProductPerformance(merged.Table)
	if err != nil {
		t.Fatalf("ProductPerformance: %v", err)
	}
	if res.Table.Len() != 1 {
		t.Fatalf("rows = %d, want 1", res.Table.Len())
	}
	r := res.Table.Row(0)
	if r["total_revenue"] != 250.0 || r["total_units_sold"] != int64(5) || r["average_rating"] != 4.0 {
		t.Fatalf("row = %v", r)
	}
	if r["performance_tier"] != "Low Performer" {
		t.Fatalf("tier = %v", r["performance_tier"])
	}
	if res.Violations() != 0 {
		t.Fatalf("violations: %v", res.Err())
	}
}

func TestTierBins(t *testing.T) {
	t.Parallel()

	b := TierBins()
	tests := []struct {
		v    float64
		want any
	}{
		{0, "Low Performer"},
		{19999.99, "Low Performer"},
		{20000, "Average"},
		{49999, "Average"},
		{50000, "Bestseller"},
		{-1, nil},
	}
	for _, tc := range tests {
		if got := b.LabelValue(tc.v); got != tc.want {
			t.Fatalf("tier(%v) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestRevenueConcentration_Example(t *testing.T) {
	t.Parallel()

	x, _ := newTransformer(t)
	in := enrichedRows([]string{"region", "total_sales"},
		[]any{"North", 1000.0},
		[]any{"South", 2000.0},
		[]any{"East", 500.0},
		[]any{"North", 500.0},
	)
	res, err := x.RevenueConcentration(in)
	if err != nil {
		t.Fatalf("RevenueConcentration: %v", err)
	}
	want := []struct {
		region           string
		sales, share, cu float64
	}{
		{"South", 2000, 0.5, 0.5},
		{"North", 1500, 0.375, 0.875},
		{"East", 500, 0.125, 1.0},
	}
	out := res.Table
	if out.Len() != len(want) {
		t.Fatalf("rows = %d", out.Len())
	}
	sum := 0.0
	prev := 0.0
	for i, w := range want {
		r := out.Row(i)
		share := r["revenue_share"].(float64)
		cum := r["cumulative_share"].(float64)
		if r["region"] != w.region || r["total_sales"] != w.sales ||
			math.Abs(share-w.share) > 1e-9 || math.Abs(cum-w.cu) > 1e-9 {
			t.Fatalf("row %d = %v, want %+v", i, r, w)
		}
		if cum < prev {
			t.Fatalf("cumulative share decreased at row %d", i)
		}
		prev = cum
		sum += share
	}
	if math.Abs(prev-1) > 1e-6 || math.Abs(sum-1) > 1e-6 {
		t.Fatalf("final cumulative %v, share sum %v", prev, sum)
	}
	if want := []string{"region", "total_sales", "revenue_share", "cumulative_share"}; !reflect.DeepEqual(out.Columns(), want) {
		t.Fatalf("columns = %v", out.Columns())
	}
}

func TestRevenueConcentration_MissingColumns(t *testing.T) {
	t.Parallel()

	x, _ := newTransformer(t)
	_, err := x.RevenueConcentration(records.New([]string{"region"}, nil))
	if !errors.Is(err, builtin.ErrMissingColumns) {
		t.Fatalf("err = %v", err)
	}
}

/*
TestHourlyTrends_PeakAndTieBreak verifies the peak hour is the one with the
highest summed sales and that an exact tie resolves to the earlier hour.
*/
func TestHourlyTrends_PeakAndTieBreak(t *testing.T) {
	t.Parallel()

	x, _ := newTransformer(t)
	cols := []string{"region", "category", "hour", "total_sales"}
	in := enrichedRows(cols,
		[]any{"north", "toys", int64(9), 10.0},
		[]any{"north", "toys", int64(14), 25.0},
		[]any{"north", "toys", int64(9), 20.0},
		[]any{"south", "toys", int64(18), 5.0},
		[]any{"south", "toys", int64(8), 5.0},
	)
	res, err := x.HourlyTrends(in)
	if err != nil {
		t.Fatalf("HourlyTrends: %v", err)
	}
	out := res.Table
	if want := []string{"region", "category", "peak_hour", "max_sales"}; !reflect.DeepEqual(out.Columns(), want) {
		t.Fatalf("columns = %v", out.Columns())
	}
	if out.Len() != 2 {
		t.Fatalf("rows = %d", out.Len())
	}
	if out.Value(0, "peak_hour") != int64(9) || out.Value(0, "max_sales") != 30.0 {
		t.Fatalf("north = %v", out.Row(0))
	}
	if out.Value(1, "peak_hour") != int64(8) {
		t.Fatalf("south tie should go to hour 8: %v", out.Row(1))
	}
}

func TestSeasonalPatterns(t *testing.T) {
	t.Parallel()

	x, _ := newTransformer(t)
	cols := []string{"timestamp", "category", "total_sales"}
	in := enrichedRows(cols,
		[]any{time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), "toys", 10.0},
		[]any{time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), "toys", 5.0},
		[]any{time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), "toys", 1.0},
		[]any{time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), "garden", 2.0},
	)
	res, err := x.SeasonalPatterns(in)
	if err != nil {
		t.Fatalf("SeasonalPatterns: %v", err)
	}
	got := res.Table
	want := [][]any{
		{"2024Q4", "garden", 2.0, int64(1)},
		{"2025Q1", "toys", 15.0, int64(2)},
		{"2025Q2", "toys", 1.0, int64(1)},
	}
	if got.Len() != len(want) {
		t.Fatalf("rows = %d", got.Len())
	}
	for i, w := range want {
		r := got.Row(i)
		if r["quarter"] != w[0] || r["category"] != w[1] || r["total_sales"] != w[2] || r["order_count"] != w[3] {
			t.Fatalf("row %d = %v, want %v", i, r, w)
		}
	}
}

func TestWeekStart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want time.Time
	}{
		{time.Date(2025, 8, 6, 15, 4, 0, 0, time.UTC), time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC), time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 8, 10, 23, 59, 0, 0, time.UTC), time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC), time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		if got := WeekStart(tc.in); !got.Equal(tc.want) {
			t.Fatalf("WeekStart(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

/*
TestOrderStatusOverTime_FixedColumns verifies that the pivot always has
exactly week, Pending, Shipped and Returned, zero-filled, even when only one
status is present.
*/
func TestOrderStatusOverTime_FixedColumns(t *testing.T) {
	t.Parallel()

	x, _ := newTransformer(t)
	cols := []string{"timestamp", "order_status"}
	in := enrichedRows(cols,
		[]any{time.Date(2025, 8, 5, 10, 0, 0, 0, time.UTC), "shipped"},
		[]any{time.Date(2025, 8, 6, 10, 0, 0, 0, time.UTC), "shipped"},
		[]any{time.Date(2025, 8, 12, 10, 0, 0, 0, time.UTC), "shipped"},
	)
	res, err := x.OrderStatusOverTime(in)
	if err != nil {
		t.Fatalf("OrderStatusOverTime: %v", err)
	}
	out := res.Table
	if want := []string{"week", "Pending", "Shipped", "Returned"}; !reflect.DeepEqual(out.Columns(), want) {
		t.Fatalf("columns = %v, want %v", out.Columns(), want)
	}
	if out.Len() != 2 {
		t.Fatalf("weeks = %d, want 2", out.Len())
	}
	first := out.Row(0)
	if first["Shipped"] != int64(2) || first["Pending"] != int64(0) || first["Returned"] != int64(0) {
		t.Fatalf("week 1 = %v", first)
	}
	if !first["week"].(time.Time).Equal(time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("week = %v", first["week"])
	}
	if res.Violations() != 0 {
		t.Fatalf("violations: %v", res.Err())
	}
}

func TestOrderStatusOverTime_IgnoresOtherStatuses(t *testing.T) {
	t.Parallel()

	x, _ := newTransformer(t)
	in := enrichedRows([]string{"timestamp", "order_status"},
		[]any{time.Date(2025, 8, 5, 10, 0, 0, 0, time.UTC), "completed"},
		[]any{time.Date(2025, 8, 5, 11, 0, 0, 0, time.UTC), "returned"},
	)
	res, err := x.OrderStatusOverTime(in)
	if err != nil {
		t.Fatalf("OrderStatusOverTime: %v", err)
	}
	if got := res.Table.Row(0); got["Returned"] != int64(1) || len(got) != 4 {
		t.Fatalf("row = %v", got)
	}
}
