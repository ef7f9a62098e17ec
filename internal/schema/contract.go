// Package schema declares column contracts for tables and validates tables
// against them.
//
// Validation is fail-open: a table that violates its contract is logged and
// handed back unchanged inside an Outcome, and the caller decides whether the
// violations should stop the run.
package schema

import (
	"fmt"
	"strings"
)

// Type is the logical value type a column must hold.
type Type string

const (
	Any       Type = ""
	Int       Type = "int"
	Float     Type = "float"
	String    Type = "string"
	Bool      Type = "bool"
	Timestamp Type = "timestamp"
)

// Field describes one column. A field is required unless Optional is set, and
// rejects nulls unless Nullable is set. Checks only see non-null values.
type Field struct {
	Name     string
	Type     Type
	Nullable bool
	Optional bool
	Checks   []Check
}

// Contract is an ordered set of column specs.
type Contract struct {
	Name   string
	Fields []Field
}

// Columns returns the field names in declaration order.
func (c Contract) Columns() []string {
	out := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = f.Name
	}
	return out
}

// String renders the contract on one line for log output.
func (c Contract) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteString("{")
	for i, f := range c.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		typ := string(f.Type)
		if typ == "" {
			typ = "any"
		}
		fmt.Fprintf(&b, "%s:%s", f.Name, typ)
		if f.Nullable {
			b.WriteString("?")
		}
		for _, ch := range f.Checks {
			b.WriteString(" ")
			b.WriteString(ch.Name)
		}
	}
	b.WriteString("}")
	return b.String()
}
