// Command retailetl runs the retail batch pipeline: extract raw sales and
// product files, clean, join, enrich and aggregate them, and replace the nine
// output tables in the configured warehouse.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	// Register every warehouse backend and source with their factories; the
	// config picks one of each at runtime.
	_ "retailetl/internal/datasource/all"
	_ "retailetl/internal/storage/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
