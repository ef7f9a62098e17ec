package retail

import (
	"retailetl/internal/schema"
	"retailetl/internal/transformer/builtin"
	"retailetl/pkg/records"
)

// RevenueConcentration ranks regions by total sales and adds each region's
// revenue share and the cumulative share from the largest region down.
func (x *Transformer) RevenueConcentration(enriched records.Table) (Result, error) {
	log := x.log("revenue_concentration_analysis")
	log.Info("analyzing revenue concentration by region")

	if err := builtin.RequireColumns(enriched, []string{"region", "total_sales"}, "revenue concentration analysis"); err != nil {
		return Result{}, err
	}
	var rows []records.Record
	for _, g := range groupBy(enriched, "region") {
		rows = append(rows, records.Record{"region": g.keys[0], "total_sales": sumFloat(g.rows, "total_sales")})
	}
	regions := records.New([]string{"region", "total_sales"}, rows)

	t, err := builtin.PercentageShare(log, regions, "total_sales", nil, "revenue_share", "cumulative_share")
	if err != nil {
		return Result{}, err
	}
	log.Info("revenue concentration analysis complete", "regions", t.Len())

	out := schema.Validate(log, t, RevenueConcentrationContract)
	return Result{Table: out.Data, Outcomes: []schema.Outcome{out}}, nil
}
