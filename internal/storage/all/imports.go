// Package all wires every built-in warehouse backend into the storage
// factory. Import it for side effects:
//
//	import _ "retailetl/internal/storage/all"
//
// after which storage.New and storage.DialectFor accept "postgres", "mssql"
// and "sqlite". A binary that needs only a subset can import the backend
// packages directly instead.
package all

import (
	_ "retailetl/internal/storage/mssql"
	_ "retailetl/internal/storage/postgres"
	_ "retailetl/internal/storage/sqlite"
)
