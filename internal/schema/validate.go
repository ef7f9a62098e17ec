package schema

import (
	"errors"
	"fmt"

	"retailetl/internal/logging"
	"retailetl/pkg/records"
)

// ErrContractViolated is returned by Outcome.Err when a table failed its
// contract.
var ErrContractViolated = errors.New("schema: contract violated")

// sampleLimit bounds how many failing rows are written to the log.
const sampleLimit = 10

// Violation describes one failure. Row is -1 for column-level failures such
// as a missing column.
type Violation struct {
	Row    int
	Column string
	Check  string
	Value  any
}

func (v Violation) String() string {
	if v.Row < 0 {
		return fmt.Sprintf("column %q: %s", v.Column, v.Check)
	}
	return fmt.Sprintf("row %d column %q: %s (value %v)", v.Row, v.Column, v.Check, v.Value)
}

// Outcome is the result of a validation. Data is always the input table,
// whether or not it passed.
type Outcome struct {
	Contract   string
	Data       records.Table
	Violations []Violation
}

func (o Outcome) OK() bool { return len(o.Violations) == 0 }

// Err returns nil for a passing outcome and an error wrapping
// ErrContractViolated otherwise.
func (o Outcome) Err() error {
	if o.OK() {
		return nil
	}
	return fmt.Errorf("%w: %s: %d violation(s), first: %s",
		ErrContractViolated, o.Contract, len(o.Violations), o.Violations[0])
}

// Validate checks t against c. Every failure is collected (lazy validation).
// When any are found they are logged at error level, together with a bounded
// sample of the failing rows and the contract, and t is returned as-is.
func Validate(log *logging.Logger, t records.Table, c Contract) Outcome {
	log = logging.OrNop(log)
	out := Outcome{Contract: c.Name, Data: t}

	for _, f := range c.Fields {
		if !t.HasColumn(f.Name) {
			if !f.Optional {
				out.Violations = append(out.Violations, Violation{Row: -1, Column: f.Name, Check: "column_in_dataframe"})
			}
			continue
		}
		for i := 0; i < t.Len(); i++ {
			v := t.Value(i, f.Name)
			if failed := checkValue(f, v); failed != "" {
				out.Violations = append(out.Violations, Violation{Row: i, Column: f.Name, Check: failed, Value: v})
			}
		}
	}

	if out.OK() {
		log.Debug("schema validation passed", "contract", c.Name, "rows", t.Len())
		return out
	}

	sample := make([]string, 0, sampleLimit)
	for _, v := range out.Violations {
		if len(sample) == sampleLimit {
			break
		}
		sample = append(sample, v.String())
	}
	log.Error("schema validation failed",
		"contract", c.Name,
		"violations", len(out.Violations),
		"failure_cases", sample,
		"schema", c.String(),
	)
	return out
}

// checkValue returns the name of the first failed rule, or "" when v passes.
func checkValue(f Field, v any) string {
	if records.IsNull(v) {
		if f.Nullable {
			return ""
		}
		return "not_nullable"
	}
	if !hasType(f.Type, v) {
		return "dtype('" + string(f.Type) + "')"
	}
	for _, ch := range f.Checks {
		if !ch.Fn(v) {
			return ch.Name
		}
	}
	return ""
}

func hasType(t Type, v any) bool {
	switch t {
	case Any:
		return true
	case Int:
		switch v.(type) {
		case int64, int, int32:
			return true
		}
		return false
	case Float:
		_, ok := records.AsFloat(v)
		return ok
	case String:
		_, ok := v.(string)
		return ok
	case Bool:
		_, ok := v.(bool)
		return ok
	case Timestamp:
		_, ok := records.AsTime(v)
		return ok
	}
	return false
}
