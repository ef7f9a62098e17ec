package ddl

// ColumnDef is one column of a table to create. Name is unquoted; renderers
// quote it. SQLType is already dialect-specific (BIGINT, TEXT, ...).
// PrimaryKey columns are always NOT NULL.
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
}

// TableDef is a table to create: a dotted name and its columns in order.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Keys returns the primary-key column names in column order.
func (t TableDef) Keys() []string {
	var out []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			out = append(out, c.Name)
		}
	}
	return out
}
