package retail

import (
	"math"

	"retailetl/internal/schema"
	"retailetl/internal/transformer/builtin"
	"retailetl/pkg/records"
)

// TierBins rank products by revenue: [0,20000) Low Performer,
// [20000,50000) Average, [50000,+Inf) Bestseller. Unlike SalesBuckets the
// lowest edge carries no include-lowest flag.
func TierBins() builtin.Bins {
	b, _ := builtin.NewBins([]float64{0, 20000, 50000, math.Inf(1)}, PerformanceTiers)
	return b
}

// ProductPerformance totals revenue and units per product, averages its
// rating and assigns a performance tier by revenue.
func (x *Transformer) ProductPerformance(enriched records.Table) (Result, error) {
	log := x.log("products_sales_performance")
	log.Info("generating product sales performance data")

	required := []string{"product_id", "quantity", "total_sales", "category", "brand", "rating"}
	if err := builtin.RequireColumns(enriched, required, "product sales performance"); err != nil {
		return Result{}, err
	}

	tiers := TierBins()
	var rows []records.Record
	for _, g := range groupBy(enriched, "product_id", "category", "brand") {
		revenue := sumFloat(g.rows, "total_sales")
		rows = append(rows, records.Record{
			"product_id":       g.keys[0],
			"category":         g.keys[1],
			"brand":            g.keys[2],
			"total_revenue":    revenue,
			"total_units_sold": sumInt(g.rows, "quantity"),
			"average_rating":   mean(g.rows, "rating"),
			"performance_tier": tiers.LabelValue(revenue),
		})
	}
	t := records.New([]string{
		"product_id", "category", "brand",
		"total_revenue", "total_units_sold", "average_rating", "performance_tier",
	}, rows)
	log.Info("generated performance data", "products", t.Len())

	out := schema.Validate(log, t, ProductPerformanceContract)
	return Result{Table: out.Data, Outcomes: []schema.Outcome{out}}, nil
}
