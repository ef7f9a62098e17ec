package records

import (
	"slices"
	"sort"
)

// Table is an ordered, immutable collection of rows with a fixed column set.
// The zero value is an empty table with no columns.
type Table struct {
	columns []string
	rows    []Record
}

// New builds a Table from columns and rows. Both slices are copied; the row
// maps are shared and must be treated as read-only by the caller from now on.
func New(columns []string, rows []Record) Table {
	return Table{
		columns: slices.Clone(columns),
		rows:    slices.Clone(rows),
	}
}

// FromRows builds a Table whose columns are the union of the row keys in
// first-seen order. Keys within one row are visited in sorted order since map
// iteration is unordered.
func FromRows(rows []Record) Table {
	seen := map[string]struct{}{}
	var cols []string
	for _, r := range rows {
		keys := make([]string, 0, len(r))
		for k := range r {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}
	return New(cols, rows)
}

// Columns returns a copy of the ordered column names.
func (t Table) Columns() []string { return slices.Clone(t.columns) }

// Len returns the number of rows.
func (t Table) Len() int { return len(t.rows) }

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.rows) == 0 }

// Row returns row i. The returned Record is shared: read it, never write it.
func (t Table) Row(i int) Record { return t.rows[i] }

// Rows returns the row slice. Callers must not modify the returned records.
func (t Table) Rows() []Record { return slices.Clone(t.rows) }

// HasColumn reports whether name is one of the table's columns.
func (t Table) HasColumn(name string) bool { return slices.Contains(t.columns, name) }

// Value returns the value of column col in row i (nil when absent).
func (t Table) Value(i int, col string) any { return t.rows[i][col] }

// Values returns every value of column col in row order.
func (t Table) Values(col string) []any {
	out := make([]any, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[col]
	}
	return out
}

// Filter returns the rows for which keep returns true. Kept rows are shared
// with t since they are not modified.
func (t Table) Filter(keep func(Record) bool) Table {
	out := make([]Record, 0, len(t.rows))
	for _, r := range t.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return Table{columns: slices.Clone(t.columns), rows: out}
}

// Map returns a table whose rows are fn applied to a clone of each row. The
// column set is unchanged; use WithColumn to add columns.
func (t Table) Map(fn func(Record) Record) Table {
	out := make([]Record, len(t.rows))
	for i, r := range t.rows {
		out[i] = fn(r.Clone())
	}
	return Table{columns: slices.Clone(t.columns), rows: out}
}

// WithColumn sets column name on every row to fn(row). The column is appended
// to the column list when it does not exist yet.
func (t Table) WithColumn(name string, fn func(Record) any) Table {
	cols := slices.Clone(t.columns)
	if !slices.Contains(cols, name) {
		cols = append(cols, name)
	}
	out := make([]Record, len(t.rows))
	for i, r := range t.rows {
		c := r.Clone()
		c[name] = fn(r)
		out[i] = c
	}
	return Table{columns: cols, rows: out}
}

// Rename renames columns using fn. When two columns map to the same name the
// later one wins, matching how a dataframe rename behaves on collisions.
func (t Table) Rename(fn func(string) string) Table {
	cols := make([]string, 0, len(t.columns))
	mapping := make(map[string]string, len(t.columns))
	seen := map[string]struct{}{}
	for _, c := range t.columns {
		n := fn(c)
		mapping[c] = n
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		cols = append(cols, n)
	}
	out := make([]Record, len(t.rows))
	for i, r := range t.rows {
		nr := make(Record, len(r))
		for k, v := range r {
			if _, ok := mapping[k]; !ok {
				nr[k] = v
			}
		}
		for _, c := range t.columns {
			if v, ok := r[c]; ok {
				nr[mapping[c]] = v
			}
		}
		out[i] = nr
	}
	return Table{columns: cols, rows: out}
}

// Select projects the table onto cols, in that order. Columns absent from the
// table are still emitted with null values.
func (t Table) Select(cols ...string) Table {
	out := make([]Record, len(t.rows))
	for i, r := range t.rows {
		nr := make(Record, len(cols))
		for _, c := range cols {
			nr[c] = r[c]
		}
		out[i] = nr
	}
	return Table{columns: slices.Clone(cols), rows: out}
}

// SortStable returns the rows ordered by less; equal rows keep their
// original relative order.
func (t Table) SortStable(less func(a, b Record) bool) Table {
	out := slices.Clone(t.rows)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return Table{columns: slices.Clone(t.columns), rows: out}
}
