package builtin

import "retailetl/pkg/records"

// RequireColumns fails with a *MissingColumnsError naming every column in
// cols that t lacks.
func RequireColumns(t records.Table, cols []string, operation string) error {
	var missing []string
	for _, c := range cols {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Operation: operation, Columns: missing}
	}
	return nil
}

// DropNulls removes any row with a null in one of cols. A column missing from
// t counts as null in every row.
func DropNulls(t records.Table, cols []string) records.Table {
	return t.Filter(func(r records.Record) bool {
		for _, c := range cols {
			if records.IsNull(r[c]) {
				return false
			}
		}
		return true
	})
}
