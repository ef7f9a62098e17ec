package builtin

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"retailetl/pkg/records"
)

// StandardizeColumnNames applies rename (exact match on the raw name) and
// then cleans every column name: NFC normalisation, trim, lower-case, and
// internal whitespace runs collapsed to a single underscore.
func StandardizeColumnNames(t records.Table, rename map[string]string) records.Table {
	return t.Rename(func(name string) string {
		if to, ok := rename[name]; ok {
			name = to
		}
		return cleanName(name)
	})
}

func cleanName(s string) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// Case is a case-folding mode for CleanStringColumns.
type Case string

const (
	Lower Case = "lower"
	Upper Case = "upper"
	Keep  Case = ""
)

// CaseMap selects a case per column.
type CaseMap map[string]Case

// CleanStringColumns stringifies, trims and case-folds the listed columns.
// Columns absent from t are skipped and nulls stay null. NBSP (and its
// mis-decoded "Â " form) is treated as a plain space before trimming.
func CleanStringColumns(t records.Table, cols []string, c Case) records.Table {
	m := make(CaseMap, len(cols))
	for _, col := range cols {
		m[col] = c
	}
	return CleanStringColumnsMap(t, m)
}

// CleanStringColumnsMap is CleanStringColumns with a case per column.
func CleanStringColumnsMap(t records.Table, cols CaseMap) records.Table {
	present := make(CaseMap, len(cols))
	for col, c := range cols {
		if t.HasColumn(col) {
			present[col] = c
		}
	}
	if len(present) == 0 {
		return t
	}
	return t.Map(func(r records.Record) records.Record {
		for col, c := range present {
			v := r[col]
			if records.IsNull(v) {
				r[col] = nil
				continue
			}
			r[col] = foldCase(cleanSpace(records.Format(v)), c)
		}
		return r
	})
}

func cleanSpace(s string) string {
	if strings.ContainsRune(s, '\u00a0') {
		s = strings.ReplaceAll(s, "\u00c2\u00a0", " ")
		s = strings.ReplaceAll(s, "\u00a0", " ")
	}
	return strings.TrimSpace(s)
}

func foldCase(s string, c Case) string {
	switch c {
	case Lower:
		return strings.ToLower(s)
	case Upper:
		return strings.ToUpper(s)
	}
	return s
}
