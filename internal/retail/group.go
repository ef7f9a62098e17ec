package retail

import (
	"sort"
	"strings"

	"retailetl/pkg/records"
)

type group struct {
	keys []any
	rows []records.Record
}

// groupBy partitions t by the values of cols. Rows with a null in any key
// column are dropped. Groups come back sorted by key, lexicographically over
// cols; rows within a group keep table order.
func groupBy(t records.Table, cols ...string) []group {
	index := map[string]int{}
	var groups []group
	for _, r := range t.Rows() {
		keys := make([]any, len(cols))
		parts := make([]string, len(cols))
		skip := false
		for i, c := range cols {
			v := r[c]
			if records.IsNull(v) {
				skip = true
				break
			}
			keys[i] = v
			parts[i] = records.Key(v)
		}
		if skip {
			continue
		}
		k := strings.Join(parts, "\x1f")
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, group{keys: keys})
		}
		groups[i].rows = append(groups[i].rows, r)
	}
	sort.SliceStable(groups, func(i, j int) bool { return lessKeys(groups[i].keys, groups[j].keys) })
	return groups
}

func lessKeys(a, b []any) bool {
	for i := range a {
		if c := records.Compare(a[i], b[i]); c != 0 {
			return c < 0
		}
	}
	return false
}

func sumFloat(rows []records.Record, col string) float64 {
	var s float64
	for _, r := range rows {
		if f, ok := records.AsFloat(r[col]); ok {
			s += f
		}
	}
	return s
}

func sumInt(rows []records.Record, col string) int64 {
	var s int64
	for _, r := range rows {
		if i, ok := records.AsInt(r[col]); ok {
			s += i
		}
	}
	return s
}

// mean averages the numeric values of col; nil when there are none.
func mean(rows []records.Record, col string) any {
	var s float64
	n := 0
	for _, r := range rows {
		if f, ok := records.AsFloat(r[col]); ok {
			s += f
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return s / float64(n)
}
