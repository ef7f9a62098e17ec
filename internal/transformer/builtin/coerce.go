package builtin

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"retailetl/internal/schema"
	"retailetl/pkg/records"
)

var (
	truthy = map[string]struct{}{"1": {}, "t": {}, "true": {}, "yes": {}, "y": {}}
	falsy  = map[string]struct{}{"0": {}, "f": {}, "false": {}, "no": {}, "n": {}}
)

// Coerce converts the listed columns to their target types. Raw strings and
// JSON numbers are parsed; values that cannot be represented become null.
// Timestamp columns are left to SafeDatetime. Columns t lacks are skipped.
func Coerce(t records.Table, types map[string]schema.Type) records.Table {
	use := make(map[string]schema.Type, len(types))
	for col, typ := range types {
		if t.HasColumn(col) && typ != schema.Timestamp && typ != schema.Any {
			use[col] = typ
		}
	}
	if len(use) == 0 {
		return t
	}
	return t.Map(func(r records.Record) records.Record {
		for col, typ := range use {
			r[col] = coerceValue(r[col], typ)
		}
		return r
	})
}

func coerceValue(v any, typ schema.Type) any {
	if records.IsNull(v) {
		return nil
	}
	switch typ {
	case schema.Int:
		if i, ok := toInt(v); ok {
			return i
		}
	case schema.Float:
		if f, ok := toFloat(v); ok {
			return f
		}
	case schema.Bool:
		if b, ok := toBool(v); ok {
			return b
		}
	case schema.String:
		return records.Format(v)
	}
	return nil
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, true
		}
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return records.AsInt(f)
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return records.AsInt(f)
	case bool:
		return 0, false
	}
	return records.AsInt(v)
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return records.AsFloat(v)
}

func toBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		if _, ok := truthy[s]; ok {
			return true, true
		}
		if _, ok := falsy[s]; ok {
			return false, true
		}
		return false, false
	case json.Number:
		return toBool(x.String())
	}
	if i, ok := records.AsInt(v); ok && (i == 0 || i == 1) {
		return i == 1, true
	}
	return false, false
}
