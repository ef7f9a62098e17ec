package builtin

import (
	"retailetl/internal/logging"
	"retailetl/pkg/records"
)

// FilterPositive keeps rows in which every listed column holds a number
// greater than zero. Listed columns that t lacks are ignored with a warning.
func FilterPositive(log *logging.Logger, t records.Table, cols ...string) records.Table {
	log = logging.OrNop(log)
	var use []string
	for _, c := range cols {
		if !t.HasColumn(c) {
			log.Warn("column not found for positive value filtering", "column", c)
			continue
		}
		use = append(use, c)
	}
	out := t.Filter(func(r records.Record) bool {
		for _, c := range use {
			f, ok := records.AsFloat(r[c])
			if !ok || f <= 0 {
				return false
			}
		}
		return true
	})
	log.Info("filtered rows with positive values", "columns", cols, "rows", out.Len())
	return out
}

// FilterIn keeps rows whose col value is one of allowed. When t lacks col it
// is returned as-is with a warning.
func FilterIn(log *logging.Logger, t records.Table, col string, allowed []string) records.Table {
	log = logging.OrNop(log)
	if !t.HasColumn(col) {
		log.Warn("column not found for categorical filtering", "column", col)
		return t
	}
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	seen := map[string]struct{}{}
	var unique []string
	out := t.Filter(func(r records.Record) bool {
		if k := records.Format(r[col]); !contains(seen, k) {
			seen[k] = struct{}{}
			unique = append(unique, k)
		}
		s, ok := records.AsString(r[col])
		if !ok {
			return false
		}
		return contains(set, s)
	})
	log.Info("filtered to valid values", "column", col, "allowed", allowed, "unique_values", unique, "rows", out.Len())
	return out
}

// FillNull sets col to value wherever it is null, adding the column when t
// lacks it.
func FillNull(t records.Table, col string, value any) records.Table {
	return t.WithColumn(col, func(r records.Record) any {
		if v := r[col]; !records.IsNull(v) {
			return v
		}
		return value
	})
}

func contains(set map[string]struct{}, k string) bool {
	_, ok := set[k]
	return ok
}
