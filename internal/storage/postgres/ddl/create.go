package ddl

import (
	"strings"

	gddl "retailetl/internal/ddl"
)

// QuoteIdent quotes one identifier segment, doubling embedded quotes.
func QuoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// BuildCreateTableSQL renders CREATE TABLE with quoted identifiers:
//
//	CREATE TABLE "schema"."table" (
//	  "col" TYPE [NOT NULL],
//	  ...
//	);
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	return gddl.Render(t, QuoteIdent)
}
