// Package all links every datasource kind into a binary.
package all

import (
	_ "retailetl/internal/datasource/file"
	_ "retailetl/internal/datasource/s3source"
)
