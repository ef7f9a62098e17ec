package ddl

import (
	"fmt"
	"slices"

	"retailetl/pkg/records"
)

// Logical column kinds produced by Kind and consumed by dialect type maps.
const (
	KindInt       = "int"
	KindFloat     = "float"
	KindBool      = "bool"
	KindTimestamp = "timestamp"
	KindString    = "string"
)

// Kind returns the logical kind that can hold every non-null value. Ints
// widen to float when both appear; any other mix, or no values at all, is
// string.
func Kind(values []any) string {
	kind := ""
	for _, v := range values {
		if records.IsNull(v) {
			continue
		}
		k := valueKind(v)
		switch {
		case kind == "":
			kind = k
		case kind == k:
		case (kind == KindInt && k == KindFloat) || (kind == KindFloat && k == KindInt):
			kind = KindFloat
		default:
			return KindString
		}
	}
	if kind == "" {
		return KindString
	}
	return kind
}

func valueKind(v any) string {
	switch v.(type) {
	case int64, int, int32:
		return KindInt
	case float64:
		return KindFloat
	case bool:
		return KindBool
	default:
		if _, ok := records.AsTime(v); ok {
			return KindTimestamp
		}
	}
	return KindString
}

// Infer builds a table definition for t named fqn. Column types come from
// mapType applied to each column's Kind; a column is nullable when it holds
// any null. Columns named in primaryKey become the table's key; each must
// exist and hold no nulls.
func Infer(fqn string, t records.Table, mapType func(kind string) string, primaryKey ...string) (TableDef, error) {
	for _, k := range primaryKey {
		if !t.HasColumn(k) {
			return TableDef{}, fmt.Errorf("ddl: primary key column %q not in table %s", k, fqn)
		}
	}
	cols := t.Columns()
	defs := make([]ColumnDef, 0, len(cols))
	for _, c := range cols {
		vals := t.Values(c)
		nullable := len(vals) == 0
		for _, v := range vals {
			if records.IsNull(v) {
				nullable = true
				break
			}
		}
		pk := slices.Contains(primaryKey, c)
		if pk && nullable {
			return TableDef{}, fmt.Errorf("ddl: primary key column %q of %s holds nulls", c, fqn)
		}
		defs = append(defs, ColumnDef{
			Name:       c,
			SQLType:    mapType(Kind(vals)),
			Nullable:   nullable,
			PrimaryKey: pk,
		})
	}
	return TableDef{FQN: fqn, Columns: defs}, nil
}
