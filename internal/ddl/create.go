// Package ddl defines a small, backend-agnostic model for SQL DDL, renders
// CREATE and DROP statements from it, and infers a table definition from the
// values of a records.Table.
//
// Dialect packages (internal/storage/<backend>/ddl) supply the identifier
// quoting and the logical-to-SQL type mapping; the statement shapes are
// shared.
package ddl

import (
	"fmt"
	"strings"
)

// QuoteFunc quotes one identifier segment.
type QuoteFunc func(string) string

// BuildCreateTableSQL renders a CREATE TABLE statement with identifiers
// emitted as-is.
//
// A column is rendered as
//
//	<Name> <SQLType> [NOT NULL]
//
// with NOT NULL added when Nullable is false or the column is part of the
// primary key. Primary-key columns are collected into a trailing
// PRIMARY KEY (...) clause in column order.
func BuildCreateTableSQL(t TableDef) (string, error) {
	return Render(t, nil)
}

// Render is BuildCreateTableSQL with identifiers passed through quote. A nil
// quote leaves identifiers unchanged.
func Render(t TableDef, quote QuoteFunc) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}
	if quote == nil {
		quote = func(s string) string { return s }
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)

		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, quote(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf(
		"CREATE TABLE %s (\n  %s\n);",
		QuoteFQN(fqn, quote),
		strings.Join(cols, ",\n  "),
	), nil
}

// BuildDropTableSQL renders DROP TABLE IF EXISTS for fqn.
func BuildDropTableSQL(fqn string, quote QuoteFunc) (string, error) {
	q := QuoteFQN(strings.TrimSpace(fqn), quote)
	if q == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	return "DROP TABLE IF EXISTS " + q + ";", nil
}

// QuoteFQN quotes each dot-separated segment of fqn. Empty segments are
// dropped. A nil quote only removes empty segments.
func QuoteFQN(fqn string, quote QuoteFunc) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if quote != nil {
			p = quote(p)
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}
