package builtin

import (
	"math"
	"testing"

	"retailetl/pkg/records"
)

func TestPercentageShare_UngroupedSortsDescending(t *testing.T) {
	t.Parallel()

	in := records.New([]string{"region", "total_sales"}, []records.Record{
		{"region": "North", "total_sales": 1500.0},
		{"region": "South", "total_sales": 2000.0},
		{"region": "East", "total_sales": 500.0},
	})
	out, err := PercentageShare(nil, in, "total_sales", nil, "revenue_share", "cumulative_share")
	if err != nil {
		t.Fatalf("PercentageShare: %v", err)
	}
	want := []struct {
		region     string
		share, cum float64
	}{
		{"South", 0.5, 0.5},
		{"North", 0.375, 0.875},
		{"East", 0.125, 1.0},
	}
	for i, w := range want {
		if got := out.Value(i, "region"); got != w.region {
			t.Fatalf("row %d region = %v, want %s", i, got, w.region)
		}
		share, _ := records.AsFloat(out.Value(i, "revenue_share"))
		cum, _ := records.AsFloat(out.Value(i, "cumulative_share"))
		if math.Abs(share-w.share) > 1e-9 || math.Abs(cum-w.cum) > 1e-9 {
			t.Fatalf("row %d = (%v,%v), want (%v,%v)", i, share, cum, w.share, w.cum)
		}
	}
}

func TestPercentageShare_GroupedKeepsOrder(t *testing.T) {
	t.Parallel()

	in := records.New([]string{"g", "v"}, []records.Record{
		{"g": "a", "v": 1.0},
		{"g": "b", "v": 4.0},
		{"g": "a", "v": 3.0},
	})
	out, err := PercentageShare(nil, in, "v", []string{"g"}, "share", "cum")
	if err != nil {
		t.Fatalf("PercentageShare: %v", err)
	}
	wantShare := []float64{0.25, 1.0, 0.75}
	wantCum := []float64{0.25, 1.0, 1.0}
	for i := range wantShare {
		s, _ := records.AsFloat(out.Value(i, "share"))
		c, _ := records.AsFloat(out.Value(i, "cum"))
		if s != wantShare[i] || c != wantCum[i] {
			t.Fatalf("row %d = (%v,%v), want (%v,%v)", i, s, c, wantShare[i], wantCum[i])
		}
	}
}

func TestPercentageShare_ZeroTotal(t *testing.T) {
	t.Parallel()

	in := records.New([]string{"v"}, []records.Record{{"v": 0.0}, {"v": 0.0}})
	out, err := PercentageShare(nil, in, "v", nil, "share", "cum")
	if err != nil {
		t.Fatalf("PercentageShare: %v", err)
	}
	if got := out.Value(1, "cum"); got != 0.0 {
		t.Fatalf("cum = %v, want 0", got)
	}
}
