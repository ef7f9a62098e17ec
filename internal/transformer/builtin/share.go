package builtin

import (
	"strings"

	"retailetl/internal/logging"
	"retailetl/pkg/records"
)

// PercentageShare adds shareCol (value / total) and cumulativeCol (running sum
// of shares).
//
// Without groupCols the total is the grand sum, rows are stably sorted by
// value descending and the running sum covers the whole table. With groupCols
// each row is divided by its group's total, and the running sum restarts per
// group while rows keep their original order. Null values get null shares and
// do not advance the running sum. A zero total yields shares of 0.
func PercentageShare(log *logging.Logger, t records.Table, valueCol string, groupCols []string, shareCol, cumulativeCol string) (records.Table, error) {
	log = logging.OrNop(log)
	if err := RequireColumns(t, []string{valueCol}, "percentage share"); err != nil {
		log.Error("value column not found", "column", valueCol)
		return records.Table{}, err
	}
	if err := RequireColumns(t, groupCols, "percentage share"); err != nil {
		return records.Table{}, err
	}

	groupOf := func(r records.Record) string {
		if len(groupCols) == 0 {
			return ""
		}
		parts := make([]string, len(groupCols))
		for i, g := range groupCols {
			parts[i] = records.Key(r[g])
		}
		return strings.Join(parts, "\x1f")
	}

	totals := map[string]float64{}
	for _, r := range t.Rows() {
		if f, ok := records.AsFloat(r[valueCol]); ok {
			totals[groupOf(r)] += f
		}
	}
	for g, total := range totals {
		if total == 0 {
			log.Warn("total is zero, shares set to 0", "column", valueCol, "group", g)
		}
	}

	out := t.WithColumn(shareCol, func(r records.Record) any {
		f, ok := records.AsFloat(r[valueCol])
		if !ok {
			return nil
		}
		total := totals[groupOf(r)]
		if total == 0 {
			return 0.0
		}
		return f / total
	})
	if len(groupCols) == 0 {
		out = out.SortStable(func(a, b records.Record) bool {
			return records.Compare(a[valueCol], b[valueCol]) > 0
		})
	}

	running := map[string]float64{}
	out = out.WithColumn(cumulativeCol, func(r records.Record) any {
		s, ok := records.AsFloat(r[shareCol])
		if !ok {
			return nil
		}
		g := groupOf(r)
		running[g] += s
		return running[g]
	})
	log.Info("added percentage shares", "value", valueCol, "share", shareCol, "cumulative", cumulativeCol)
	return out, nil
}
