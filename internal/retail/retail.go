// Package retail implements the cleaning, joining, enrichment and
// aggregation stages of the retail pipeline.
//
// Every stage is a pure function of its input tables. Structural problems
// (missing columns, empty inputs, duplicate product ids) are returned as
// errors; contract violations at validation checkpoints are logged and
// reported in the Result while the stage carries on with the unvalidated data.
package retail

import (
	"errors"
	"time"

	"retailetl/internal/logging"
	"retailetl/internal/schema"
	"retailetl/internal/transformer"
	"retailetl/pkg/records"
)

// Transformer runs stages. Now is the clock used by "not in the future"
// filters and checks; nil means time.Now. Location is the zone raw
// timestamps without an offset are read in; nil means time.Local, the zone
// time.Now reports wall-clock time in.
type Transformer struct {
	Log      *logging.Logger
	Now      func() time.Time
	Location *time.Location
}

// Result is a stage's output table plus every validation outcome recorded on
// the way.
type Result struct {
	Table    records.Table
	Outcomes []schema.Outcome
}

// Violations counts contract violations over all checkpoints.
func (r Result) Violations() int {
	n := 0
	for _, o := range r.Outcomes {
		n += len(o.Violations)
	}
	return n
}

// Err joins the errors of every failed checkpoint, or returns nil.
func (r Result) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if err := o.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (x *Transformer) log(stage string) *logging.Logger {
	return logging.OrNop(x.Log).With("stage", stage)
}

func (x *Transformer) now() time.Time {
	if x.Now == nil {
		return time.Now()
	}
	return x.Now()
}

func (x *Transformer) location() *time.Location {
	if x.Location == nil {
		return time.Local
	}
	return x.Location
}

// checkpoint validates against c, records the outcome on res, and passes the
// table through unchanged.
func checkpoint(log *logging.Logger, res *Result, name string, c schema.Contract) transformer.Step {
	return transformer.Step{Name: name, Fn: func(t records.Table) (records.Table, error) {
		out := schema.Validate(log, t, c)
		res.Outcomes = append(res.Outcomes, out)
		return out.Data, nil
	}}
}

// run applies steps to in and fills res.Table.
func run(log *logging.Logger, res *Result, in records.Table, steps transformer.Chain) (Result, error) {
	log.Debug("applying transformation steps", "steps", steps.Names())
	out, err := steps.Apply(in)
	if err != nil {
		return Result{}, err
	}
	res.Table = out
	return *res, nil
}
