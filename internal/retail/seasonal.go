package retail

import (
	"fmt"
	"time"

	"retailetl/internal/schema"
	"retailetl/internal/transformer/builtin"
	"retailetl/pkg/records"
)

// Quarter labels ts as "2006Q1".."2006Q4".
func Quarter(ts time.Time) string {
	return fmt.Sprintf("%dQ%d", ts.Year(), (int(ts.Month())-1)/3+1)
}

// SeasonalPatterns totals sales and counts orders per quarter and category.
func (x *Transformer) SeasonalPatterns(enriched records.Table) (Result, error) {
	log := x.log("seasonal_sales_patterns")
	log.Info("generating seasonal sales patterns by quarter and category")

	if err := builtin.RequireColumns(enriched, []string{"timestamp", "category", "total_sales"}, "seasonal sales patterns"); err != nil {
		return Result{}, err
	}
	withQuarter := enriched.WithColumn("quarter", func(r records.Record) any {
		ts, ok := records.AsTime(r["timestamp"])
		if !ok {
			return nil
		}
		return Quarter(ts)
	})

	var rows []records.Record
	for _, g := range groupBy(withQuarter, "quarter", "category") {
		rows = append(rows, records.Record{
			"quarter":     g.keys[0],
			"category":    g.keys[1],
			"total_sales": sumFloat(g.rows, "total_sales"),
			"order_count": int64(len(g.rows)),
		})
	}
	t := records.New([]string{"quarter", "category", "total_sales", "order_count"}, rows)
	log.Info("seasonal sales pattern generation complete", "rows", t.Len())

	out := schema.Validate(log, t, SeasonalContract)
	return Result{Table: out.Data, Outcomes: []schema.Outcome{out}}, nil
}
