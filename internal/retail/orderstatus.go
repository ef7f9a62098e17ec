package retail

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"retailetl/internal/schema"
	"retailetl/internal/transformer/builtin"
	"retailetl/pkg/records"
)

// PivotStatuses are the status columns the weekly pivot always carries, in
// output order.
var PivotStatuses = []string{"Pending", "Shipped", "Returned"}

// WeekStart returns Monday 00:00 of ts's week, in ts's location.
func WeekStart(ts time.Time) time.Time {
	offset := (int(ts.Weekday()) + 6) % 7
	y, m, d := ts.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, ts.Location())
}

// OrderStatusOverTime counts orders per week and status and pivots statuses
// into columns. The output always has exactly week, Pending, Shipped and
// Returned; absent combinations count 0.
func (x *Transformer) OrderStatusOverTime(enriched records.Table) (Result, error) {
	log := x.log("order_status_over_time")
	log.Info("starting order status breakdown by week")

	if err := builtin.RequireColumns(enriched, []string{"timestamp", "order_status"}, "order status over time"); err != nil {
		return Result{}, err
	}
	title := cases.Title(language.English)
	weekly := enriched.WithColumn("week", func(r records.Record) any {
		ts, ok := records.AsTime(r["timestamp"])
		if !ok {
			return nil
		}
		return WeekStart(ts)
	})

	var rows []records.Record
	var current records.Record
	for _, g := range groupBy(weekly, "week", "order_status") {
		if current == nil || !current["week"].(time.Time).Equal(g.keys[0].(time.Time)) {
			current = records.Record{"week": g.keys[0]}
			for _, s := range PivotStatuses {
				current[s] = int64(0)
			}
			rows = append(rows, current)
		}
		status := title.String(records.Format(g.keys[1]))
		if _, ok := current[status]; ok {
			current[status] = current[status].(int64) + int64(len(g.rows))
		}
	}
	t := records.New(append([]string{"week"}, PivotStatuses...), rows)
	log.Info("weekly order status breakdown transformation complete", "weeks", t.Len())

	out := schema.Validate(log, t, OrderStatusContract)
	return Result{Table: out.Data, Outcomes: []schema.Outcome{out}}, nil
}
