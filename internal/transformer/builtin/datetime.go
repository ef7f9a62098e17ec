package builtin

import (
	"strings"
	"time"

	"retailetl/internal/logging"
	"retailetl/pkg/records"
)

// commonLayouts are tried in order when SafeDatetime is given no layout.
var commonLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"02 Jan 2006",
	"Jan 2, 2006",
}

// SafeDatetime parses col into time.Time values. Strings without a zone are
// wall-clock times in loc (nil means time.Local), so they compare correctly
// against time.Now. Existing time.Time values are kept; anything that does
// not parse becomes null. With an empty layout the common layouts are tried
// in order. A missing column is logged and t is returned as-is.
func SafeDatetime(log *logging.Logger, t records.Table, col, layout string, loc *time.Location) records.Table {
	log = logging.OrNop(log)
	if loc == nil {
		loc = time.Local
	}
	if !t.HasColumn(col) {
		log.Warn("column not found for datetime conversion", "column", col)
		return t
	}
	layouts := commonLayouts
	if layout != "" {
		layouts = []string{layout}
	}
	failed := 0
	out := t.WithColumn(col, func(r records.Record) any {
		v := r[col]
		if records.IsNull(v) {
			return nil
		}
		ts, ok := parseTime(v, layouts, loc)
		if !ok {
			failed++
			return nil
		}
		return ts
	})
	log.Info("converted column to datetime", "column", col, "location", loc.String(), "coerced_to_null", failed)
	return out
}

func parseTime(v any, layouts []string, loc *time.Location) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, l := range layouts {
			if ts, err := time.ParseInLocation(l, s, loc); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

// AddTemporalFeatures derives month ("2006-01"), weekday (English name) and
// hour (0-23) from col. Rows with a null timestamp get null features.
func AddTemporalFeatures(log *logging.Logger, t records.Table, col string) (records.Table, error) {
	if err := RequireColumns(t, []string{col}, "temporal features"); err != nil {
		logging.OrNop(log).Error("timestamp column not found", "column", col)
		return records.Table{}, err
	}
	feature := func(fn func(time.Time) any) func(records.Record) any {
		return func(r records.Record) any {
			ts, ok := records.AsTime(r[col])
			if !ok {
				return nil
			}
			return fn(ts)
		}
	}
	out := t.
		WithColumn("month", feature(func(ts time.Time) any { return ts.Format("2006-01") })).
		WithColumn("weekday", feature(func(ts time.Time) any { return ts.Weekday().String() })).
		WithColumn("hour", feature(func(ts time.Time) any { return int64(ts.Hour()) }))
	logging.OrNop(log).Info("added temporal features", "column", col)
	return out, nil
}
