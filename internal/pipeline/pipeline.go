// Package pipeline runs the retail dataflow over extracted raw tables:
//
//	sales_data   -> clean sales    \
//	                                 -> merge -> enrich -> 5 aggregators
//	product_data -> clean products /
//
// Stages are pure functions of their inputs. Independent stages run
// concurrently; a failed stage skips only the stages that consume its
// output, and every table that was produced is returned.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"retailetl/internal/config"
	"retailetl/internal/datasource"
	"retailetl/internal/logging"
	"retailetl/internal/metrics"
	"retailetl/internal/retail"
	"retailetl/pkg/records"
)

// Logical dataset names expected in the raw tables.
const (
	DatasetSales    = "sales_data"
	DatasetProducts = "product_data"
)

// PrimaryKeys holds the key columns of each aggregate output. Aggregates
// emit one row per group and drop null keys, so these are unique and non-null.
var PrimaryKeys = map[string][]string{
	config.TargetHourlyTrends:         {"region", "category"},
	config.TargetProductPerformance:   {"product_id", "category", "brand"},
	config.TargetSeasonalPatterns:     {"quarter", "category"},
	config.TargetRevenueConcentration: {"region"},
	config.TargetOrderStatusOverTime:  {"week"},
}

// ErrDatasetNotFound reports a raw dataset missing from the extraction.
var ErrDatasetNotFound = errors.New("pipeline: dataset not found")

// StageError names the stage that failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// Outputs maps target keys (config.Target*) to produced tables.
type Outputs map[string]records.Table

// Runner executes one run of the dataflow.
type Runner struct {
	Stages *retail.Transformer
	// Workers bounds how many aggregators run at once. Zero or less means one.
	Workers int
	// EscalateViolations turns contract violations into stage failures.
	EscalateViolations bool
	Job                string
	Log                *logging.Logger
}

// New builds a Runner from the runtime section of p.
func New(p config.Pipeline, log *logging.Logger) *Runner {
	return &Runner{
		Stages:             &retail.Transformer{Log: log},
		Workers:            p.Runtime.Workers,
		EscalateViolations: p.Runtime.EscalateViolations,
		Job:                p.Job,
		Log:                log,
	}
}

type aggregator struct {
	key   string
	stage string
	fn    func(records.Table) (retail.Result, error)
}

func (r *Runner) aggregators() []aggregator {
	x := r.Stages
	return []aggregator{
		{config.TargetHourlyTrends, "hourly_trends", x.HourlyTrends},
		{config.TargetProductPerformance, "product_performance", x.ProductPerformance},
		{config.TargetSeasonalPatterns, "seasonal_patterns", x.SeasonalPatterns},
		{config.TargetRevenueConcentration, "revenue_concentration", x.RevenueConcentration},
		{config.TargetOrderStatusOverTime, "order_status_over_time", x.OrderStatusOverTime},
	}
}

// Run executes every stage whose inputs are available. The returned Outputs
// hold every table produced, even when err is non-nil; err joins one
// *StageError per failed stage in dataflow order.
func (r *Runner) Run(ctx context.Context, raw datasource.RawTables) (Outputs, error) {
	if r.Stages == nil {
		r.Stages = &retail.Transformer{Log: r.Log}
	}
	runID := uuid.NewString()
	log := logging.OrNop(r.Log).With("run_id", runID)
	start := time.Now()
	log.Info("pipeline run starting", "datasets", raw.Names())

	var (
		mu   sync.Mutex
		out  = Outputs{}
		errs []error
	)
	put := func(key string, t records.Table) {
		mu.Lock()
		out[key] = t
		mu.Unlock()
	}
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	// Sales and products clean concurrently. Their errors are appended in
	// fixed order afterwards so the joined error is deterministic.
	var (
		sales, products       records.Table
		salesErr, productsErr error
		g                     errgroup.Group
	)
	g.Go(func() error {
		sales, salesErr = r.stage(ctx, log, "transform_sales", func() (retail.Result, error) {
			t, ok := raw[DatasetSales]
			if !ok {
				return retail.Result{}, fmt.Errorf("%w: %s", ErrDatasetNotFound, DatasetSales)
			}
			return r.Stages.TransformSales(t)
		})
		return nil
	})
	g.Go(func() error {
		products, productsErr = r.stage(ctx, log, "transform_products", func() (retail.Result, error) {
			t, ok := raw[DatasetProducts]
			if !ok {
				return retail.Result{}, fmt.Errorf("%w: %s", ErrDatasetNotFound, DatasetProducts)
			}
			return r.Stages.TransformProducts(t)
		})
		return nil
	})
	_ = g.Wait()

	if salesErr == nil {
		put(config.TargetSales, sales)
	} else {
		fail(salesErr)
	}
	if productsErr == nil {
		put(config.TargetProduct, products)
	} else {
		fail(productsErr)
	}
	if salesErr != nil || productsErr != nil {
		return r.finish(log, start, out, errs)
	}

	merged, err := r.stage(ctx, log, "merge", func() (retail.Result, error) {
		return r.Stages.Merge(sales, products)
	})
	if err != nil {
		fail(err)
		return r.finish(log, start, out, errs)
	}
	put(config.TargetMerged, merged)

	enriched, err := r.stage(ctx, log, "enrich", func() (retail.Result, error) {
		return r.Stages.Enrich(merged)
	})
	if err != nil {
		fail(err)
		return r.finish(log, start, out, errs)
	}
	put(config.TargetEnriched, enriched)

	aggs := r.aggregators()
	aggErrs := make([]error, len(aggs))
	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	var fan errgroup.Group
	fan.SetLimit(workers)
	for i, a := range aggs {
		fan.Go(func() error {
			t, err := r.stage(ctx, log, a.stage, func() (retail.Result, error) { return a.fn(enriched) })
			if err != nil {
				aggErrs[i] = err
				return nil
			}
			put(a.key, t)
			return nil
		})
	}
	_ = fan.Wait()
	for _, err := range aggErrs {
		if err != nil {
			fail(err)
		}
	}
	return r.finish(log, start, out, errs)
}

func (r *Runner) finish(log *logging.Logger, start time.Time, out Outputs, errs []error) (Outputs, error) {
	err := errors.Join(errs...)
	if err != nil {
		log.Error("pipeline run finished with failures",
			"outputs", len(out), "failed_stages", len(errs), "elapsed", time.Since(start).Truncate(time.Millisecond), "error", err)
		return out, err
	}
	log.Info("pipeline run complete", "outputs", len(out), "elapsed", time.Since(start).Truncate(time.Millisecond))
	return out, nil
}

// stage runs fn as the named stage. Cancellation is honoured between stages,
// never inside one.
func (r *Runner) stage(ctx context.Context, log *logging.Logger, name string, fn func() (retail.Result, error)) (records.Table, error) {
	if err := ctx.Err(); err != nil {
		return records.Table{}, &StageError{Stage: name, Err: err}
	}
	start := time.Now()
	res, err := fn()
	if err == nil && r.EscalateViolations {
		err = res.Err()
	}
	d := time.Since(start)
	metrics.RecordStage(r.Job, name, err, d)
	metrics.RecordRows(r.Job, "violations", int64(res.Violations()))

	if err != nil {
		log.Error("stage failed", "stage", name, "elapsed", d, "error", err)
		return records.Table{}, &StageError{Stage: name, Err: err}
	}
	metrics.RecordRows(r.Job, "produced", int64(res.Table.Len()))
	log.Info("stage complete", "stage", name, "rows", res.Table.Len(), "violations", res.Violations(), "elapsed", d)
	return res.Table, nil
}
