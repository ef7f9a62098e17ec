package retail

import (
	"retailetl/internal/schema"
	"retailetl/internal/transformer/builtin"
	"retailetl/pkg/records"
)

// HourlyTrends finds, per region and category, the hour with the highest
// summed sales. Ties go to the earliest hour.
func (x *Transformer) HourlyTrends(enriched records.Table) (Result, error) {
	log := x.log("sales_hourly_trends")
	log.Info("generating hourly sales trends by region and category")

	if err := builtin.RequireColumns(enriched, []string{"region", "category", "hour", "total_sales"}, "hourly sales trends"); err != nil {
		return Result{}, err
	}

	var hourly []records.Record
	for _, g := range groupBy(enriched, "region", "category", "hour") {
		hourly = append(hourly, records.Record{
			"region":      g.keys[0],
			"category":    g.keys[1],
			"hour":        g.keys[2],
			"total_sales": sumFloat(g.rows, "total_sales"),
		})
	}
	ranked := records.New([]string{"region", "category", "hour", "total_sales"}, hourly).
		SortStable(func(a, b records.Record) bool {
			if c := records.Compare(a["region"], b["region"]); c != 0 {
				return c < 0
			}
			if c := records.Compare(a["category"], b["category"]); c != 0 {
				return c < 0
			}
			return records.Compare(a["total_sales"], b["total_sales"]) > 0
		})

	var peaks []records.Record
	for _, g := range groupBy(ranked, "region", "category") {
		first := g.rows[0]
		hour, _ := records.AsInt(first["hour"])
		peaks = append(peaks, records.Record{
			"region":    first["region"],
			"category":  first["category"],
			"peak_hour": hour,
			"max_sales": first["total_sales"],
		})
	}
	t := records.New([]string{"region", "category", "peak_hour", "max_sales"}, peaks)
	log.Info("generated peak trend rows", "rows", t.Len())

	out := schema.Validate(log, t, HourlyTrendsContract)
	return Result{Table: out.Data, Outcomes: []schema.Outcome{out}}, nil
}
