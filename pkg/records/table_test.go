package records

import (
	"reflect"
	"testing"
	"time"
)

func sample() Table {
	return New([]string{"id", "name"}, []Record{
		{"id": int64(1), "name": "a"},
		{"id": int64(2), "name": "b"},
		{"id": int64(3), "name": "c"},
	})
}

// TestWithColumn_CopyOnWrite verifies that adding a column never mutates the
// rows of the source table.
func TestWithColumn_CopyOnWrite(t *testing.T) {
	t.Parallel()

	src := sample()
	out := src.WithColumn("double", func(r Record) any {
		id, _ := AsInt(r["id"])
		return id * 2
	})

	if src.HasColumn("double") {
		t.Fatalf("source gained column: %v", src.Columns())
	}
	if _, ok := src.Row(0)["double"]; ok {
		t.Fatalf("source row mutated: %#v", src.Row(0))
	}
	if got := out.Value(2, "double"); got != int64(6) {
		t.Fatalf("double[2] = %v, want 6", got)
	}
	if want := []string{"id", "name", "double"}; !reflect.DeepEqual(out.Columns(), want) {
		t.Fatalf("columns = %v, want %v", out.Columns(), want)
	}
}

func TestFilter_SharesRowsAndKeepsOrder(t *testing.T) {
	t.Parallel()

	out := sample().Filter(func(r Record) bool { return r["name"] != "b" })
	if out.Len() != 2 {
		t.Fatalf("len = %d, want 2", out.Len())
	}
	if out.Value(0, "name") != "a" || out.Value(1, "name") != "c" {
		t.Fatalf("order lost: %v", out.Values("name"))
	}
}

func TestRename_LaterColumnWinsOnCollision(t *testing.T) {
	t.Parallel()

	tbl := New([]string{"A", "a"}, []Record{{"A": 1, "a": 2}})
	out := tbl.Rename(func(s string) string { return "a" })
	if want := []string{"a"}; !reflect.DeepEqual(out.Columns(), want) {
		t.Fatalf("columns = %v, want %v", out.Columns(), want)
	}
	if got := out.Value(0, "a"); got != 2 {
		t.Fatalf("a = %v, want 2", got)
	}
}

func TestSelect_MissingColumnsAreNull(t *testing.T) {
	t.Parallel()

	out := sample().Select("name", "missing")
	if want := []string{"name", "missing"}; !reflect.DeepEqual(out.Columns(), want) {
		t.Fatalf("columns = %v, want %v", out.Columns(), want)
	}
	if v := out.Value(0, "missing"); v != nil {
		t.Fatalf("missing = %v, want nil", v)
	}
}

func TestSortStable_TiesKeepInputOrder(t *testing.T) {
	t.Parallel()

	tbl := New([]string{"k", "v"}, []Record{
		{"k": "x", "v": int64(1)},
		{"k": "y", "v": int64(2)},
		{"k": "x", "v": int64(3)},
	})
	out := tbl.SortStable(func(a, b Record) bool { return Compare(a["k"], b["k"]) < 0 })
	got := out.Values("v")
	want := []any{int64(1), int64(3), int64(2)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("values = %v, want %v", got, want)
	}
}

func TestKey_NumericRepresentationsAgree(t *testing.T) {
	t.Parallel()

	if Key(int64(101)) != Key(float64(101)) {
		t.Fatalf("int and float keys differ: %q vs %q", Key(int64(101)), Key(float64(101)))
	}
	if Key("101") == Key(int64(101)) {
		t.Fatalf("string and int keys must differ")
	}
	if Key(nil) != Key(nil) {
		t.Fatalf("null key not stable")
	}
}

func TestCompare_Kinds(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		a, b any
		want int
	}{
		{nil, int64(1), -1},
		{int64(1), 2.5, -1},
		{"b", "a", 1},
		{false, true, -1},
		{ts, ts.Add(time.Hour), -1},
		{int64(3), float64(3), 0},
	}
	for _, tc := range tests {
		if got := Compare(tc.a, tc.b); got != tc.want {
			t.Fatalf("Compare(%v,%v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
