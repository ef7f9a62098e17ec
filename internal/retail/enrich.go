package retail

import (
	"retailetl/internal/schema"
	"retailetl/internal/transformer/builtin"
	"retailetl/pkg/records"
)

// Enrich adds month, weekday and hour from timestamp and a sales_bucket
// from total_sales.
func (x *Transformer) Enrich(merged records.Table) (Result, error) {
	log := x.log("enrich_sales_products")
	log.Info("starting data enrichment process", "rows", merged.Len())

	if err := builtin.RequireColumns(merged, []string{"timestamp", "total_sales"}, "data enrichment"); err != nil {
		return Result{}, err
	}
	t, err := builtin.AddTemporalFeatures(log, merged, "timestamp")
	if err != nil {
		return Result{}, err
	}
	t, err = builtin.CreateSalesBuckets(log, t, "total_sales", nil)
	if err != nil {
		return Result{}, err
	}
	builtin.Describe(log, t, "data enrichment completed", 3)

	out := schema.Validate(log, t, EnrichedContract)
	return Result{Table: out.Data, Outcomes: []schema.Outcome{out}}, nil
}
