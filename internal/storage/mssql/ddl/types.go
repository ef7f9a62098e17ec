// Package ddl holds the SQL Server flavour of table DDL: T-SQL types,
// [bracket] identifiers, and an OBJECT_ID guard around CREATE TABLE.
package ddl

import (
	gddl "retailetl/internal/ddl"
)

// MapType maps a logical column kind to a SQL Server type. Strings and
// unknown kinds become NVARCHAR(MAX).
func MapType(kind string) string {
	switch kind {
	case gddl.KindInt:
		return "BIGINT"
	case gddl.KindFloat:
		return "FLOAT"
	case gddl.KindBool:
		return "BIT"
	case gddl.KindTimestamp:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}

// keyString is the widest NVARCHAR SQL Server accepts in a clustered index
// key (900 bytes).
const keyString = "NVARCHAR(450)"
