package ddl

import (
	"fmt"
	"strings"

	gddl "retailetl/internal/ddl"
)

// QuoteIdent quotes one identifier segment with brackets, escaping "]".
//
//	name      -> [name]
//	weird]id  -> [weird]]id]
func QuoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// BuildCreateTableSQL returns a T-SQL script that creates the table when it
// does not exist yet:
//
//	IF OBJECT_ID(N'[db].[schema].[table]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [db].[schema].[table] (
//	    [col1] TYPE [NOT NULL],
//	    ...
//	  );
//	END;
//
// NVARCHAR(MAX) key columns are narrowed to NVARCHAR(450) so they can be
// indexed.
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	cols := make([]gddl.ColumnDef, len(t.Columns))
	for i, c := range t.Columns {
		if c.PrimaryKey && c.SQLType == MapType(gddl.KindString) {
			c.SQLType = keyString
		}
		cols[i] = c
	}
	t.Columns = cols
	create, err := gddl.Render(t, QuoteIdent)
	if err != nil {
		return "", fmt.Errorf("mssql %w", err)
	}
	fqn := gddl.QuoteFQN(t.FQN, QuoteIdent)
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  %s\nEND;",
		strings.ReplaceAll(fqn, "'", "''"),
		strings.ReplaceAll(create, "\n", "\n  "),
	), nil
}
