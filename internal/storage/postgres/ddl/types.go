// Package ddl holds the Postgres flavour of table DDL: type mapping and
// double-quoted identifiers.
package ddl

import (
	gddl "retailetl/internal/ddl"
)

// MapType maps a logical column kind to a Postgres type. Unknown kinds are
// TEXT.
func MapType(kind string) string {
	switch kind {
	case gddl.KindInt:
		return "BIGINT"
	case gddl.KindFloat:
		return "DOUBLE PRECISION"
	case gddl.KindBool:
		return "BOOLEAN"
	case gddl.KindTimestamp:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}
