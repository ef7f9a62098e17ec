package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"retailetl/internal/ddl"
	"retailetl/internal/logging"
	"retailetl/internal/metrics"
	"retailetl/pkg/records"
)

// CopyFn abstracts a backend's bulk insert capability. Implementations insert
// the provided rows (aligned to columns) and return the number of rows
// written. It must cancel promptly when ctx is done.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches drains rows from in, groups them into batches of batchSize and
// calls copyFn for each non-empty batch. It returns the total reported by
// copyFn and the first error encountered, or ctx.Err() when canceled.
// Progress is logged at debug level on each successful flush.
func LoadBatches(
	ctx context.Context,
	log *logging.Logger,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}
	log = logging.OrNop(log)

	var (
		total       int64
		batches     int64
		batch       = make([][]any, 0, batchSize)
		start       = time.Now()
		lastFlushTS = start
		lastTotal   int64
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n

		// Reuse allocated slice; keep capacity to avoid churn.
		batch = batch[:0]

		if err != nil {
			log.Error("loader: copy failed", "inserted", n, "total", total, "err", err)
			return err
		}

		batches++
		now := time.Now()
		sinceLast := now.Sub(lastFlushTS)
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(total-lastTotal) / sinceLast.Seconds()
		}
		log.Debug("loader: batch flushed",
			"batch", batches,
			"rps", int64(rps),
			"inserted", n,
			"total_inserted", total,
			"elapsed", now.Sub(start).Truncate(time.Millisecond),
		)
		lastFlushTS = now
		lastTotal = total
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()

		case row, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return total, err
				}
				return total, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}

// Loader writes whole tables into a warehouse, replacing what was there.
type Loader struct {
	Repo      Repository
	Dialect   Dialect
	BatchSize int
	// Workers bounds concurrent tables in LoadAll. Zero or less means one.
	Workers int
	Job     string
	Log     *logging.Logger
}

// Replace drops target, recreates it from the column types of t (keyed on
// target.PrimaryKey) and copies every row in batches. It returns the number of rows written.
func (l *Loader) Replace(ctx context.Context, target Target, t records.Table) (int64, error) {
	if t.Empty() {
		return 0, ErrEmptyTable
	}
	log := logging.OrNop(l.Log).With("target", target.String())

	fqn := l.Dialect.FQN(target)
	def, err := ddl.Infer(fqn, t, l.Dialect.MapType, target.PrimaryKey...)
	if err != nil {
		return 0, err
	}

	drop, err := ddl.BuildDropTableSQL(fqn, l.Dialect.Quote)
	if err != nil {
		return 0, err
	}
	create, err := l.Dialect.CreateTable(def)
	if err != nil {
		return 0, fmt.Errorf("create table sql: %w", err)
	}
	if err := l.Repo.Exec(ctx, drop); err != nil {
		return 0, fmt.Errorf("drop %s: %w", fqn, err)
	}
	if err := l.Repo.Exec(ctx, create); err != nil {
		return 0, fmt.Errorf("create %s: %w", fqn, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cols := t.Columns()
	in := make(chan []any, 64)
	go func() {
		defer close(in)
		for _, r := range t.Rows() {
			row := make([]any, len(cols))
			for i, c := range cols {
				row[i] = l.value(r[c])
			}
			select {
			case in <- row:
			case <-ctx.Done():
				return
			}
		}
	}()

	batchSize := l.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}
	n, err := LoadBatches(ctx, log, cols, in, batchSize, func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		n, err := l.Repo.CopyFrom(ctx, fqn, columns, rows)
		if err == nil {
			metrics.RecordBatches(l.Job, 1)
			metrics.RecordRows(l.Job, "loaded", n)
		}
		return n, err
	})
	if err != nil {
		return n, fmt.Errorf("copy into %s: %w", fqn, err)
	}
	log.Info("table replaced", "rows", n, "columns", len(cols))
	return n, nil
}

func (l *Loader) value(v any) any {
	if records.IsNull(v) {
		return nil
	}
	if l.Dialect.Value != nil {
		return l.Dialect.Value(v)
	}
	return v
}

// LoadAll replaces every table in tables at its target. Tables load
// concurrently and a failure never stops the others; the failures are joined
// in key order. A table without a target is an error.
func (l *Loader) LoadAll(ctx context.Context, targets map[string]Target, tables map[string]records.Table) error {
	keys := make([]string, 0, len(tables))
	for k := range tables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	workers := l.Workers
	if workers <= 0 {
		workers = 1
	}
	errs := make([]error, len(keys))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, key := range keys {
		target, ok := targets[key]
		if !ok {
			errs[i] = fmt.Errorf("load %s: no target configured", key)
			continue
		}
		tbl := tables[key]
		g.Go(func() error {
			start := time.Now()
			_, err := l.Replace(ctx, target, tbl)
			metrics.RecordStage(l.Job, "load_"+key, err, time.Since(start))
			if err != nil {
				errs[i] = fmt.Errorf("load %s: %w", key, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
