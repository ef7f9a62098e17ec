// Package ddl holds the SQLite flavour of table DDL.
//
// SQLite types are affinities: integers and booleans are INTEGER, floats
// REAL, and timestamps are stored as RFC 3339 TEXT.
package ddl

import (
	gddl "retailetl/internal/ddl"
)

// MapType maps a logical column kind to a SQLite column affinity.
func MapType(kind string) string {
	switch kind {
	case gddl.KindInt, gddl.KindBool:
		return "INTEGER"
	case gddl.KindFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}
