package ddl

import (
	"math"
	"reflect"
	"testing"
	"time"

	"retailetl/pkg/records"
)

func TestKind(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   []any
		want string
	}{
		{name: "ints", in: []any{int64(1), nil, int64(2)}, want: KindInt},
		{name: "widen", in: []any{int64(1), 2.5}, want: KindFloat},
		{name: "nan is null", in: []any{math.NaN(), 1.5}, want: KindFloat},
		{name: "bools", in: []any{true, false}, want: KindBool},
		{name: "times", in: []any{ts, nil}, want: KindTimestamp},
		{name: "mixed", in: []any{int64(1), "x"}, want: KindString},
		{name: "all null", in: []any{nil, nil}, want: KindString},
		{name: "empty", in: nil, want: KindString},
	}
	for _, tc := range tests {
		if got := Kind(tc.in); got != tc.want {
			t.Fatalf("%s: Kind(%v) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestInfer(t *testing.T) {
	t.Parallel()

	tbl := records.New([]string{"id", "name", "score"}, []records.Record{
		{"id": int64(1), "name": "a", "score": 1.5},
		{"id": int64(2), "name": nil, "score": int64(3)},
	})
	upper := func(k string) string { return "T_" + k }
	got, err := Infer("RAW.T", tbl, upper)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	want := TableDef{FQN: "RAW.T", Columns: []ColumnDef{
		{Name: "id", SQLType: "T_int"},
		{Name: "name", SQLType: "T_string", Nullable: true},
		{Name: "score", SQLType: "T_float"},
	}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Infer() = %+v, want %+v", got, want)
	}
}

func TestInfer_PrimaryKey(t *testing.T) {
	t.Parallel()

	tbl := records.New([]string{"week", "Pending"}, []records.Record{
		{"week": time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC), "Pending": int64(1)},
	})
	def, err := Infer("W", tbl, func(k string) string { return k }, "week")
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if got := def.Keys(); !reflect.DeepEqual(got, []string{"week"}) {
		t.Fatalf("Keys() = %v, want [week]", got)
	}

	if _, err := Infer("W", tbl, func(k string) string { return k }, "missing"); err == nil {
		t.Fatalf("unknown key column accepted")
	}
	withNull := records.New([]string{"week"}, []records.Record{{"week": nil}})
	if _, err := Infer("W", withNull, func(k string) string { return k }, "week"); err == nil {
		t.Fatalf("nullable key column accepted")
	}
}
