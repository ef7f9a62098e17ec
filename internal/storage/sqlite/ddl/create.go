package ddl

import (
	"strings"

	gddl "retailetl/internal/ddl"
)

// QuoteIdent double-quotes one identifier segment.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// BuildCreateTableSQL renders a SQLite CREATE TABLE statement. SQLite has no
// schemas, so the definition's FQN should be a bare table name.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.Render(t, QuoteIdent)
}
