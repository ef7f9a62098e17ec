// Package records defines the row and table values that flow between
// pipeline stages.
//
// A Record maps column names to typed values. The value set is closed:
//
//	int64, float64, string, bool, time.Time, or nil (null)
//
// Raw records produced by parsers may additionally carry json.Number values
// until a coercion step types them.
//
// A Table is an immutable snapshot: an ordered column list plus ordered rows.
// Every Table method returns a new Table and never mutates the receiver or any
// Record it shares with other tables. Rows are cloned before they are changed
// (copy-on-write), so a stage that fails halfway never leaves a table that
// another stage holds partially modified.
package records

// Record is a single row keyed by column name.
type Record map[string]any

// Clone returns a shallow copy of r. Values in the closed value set are
// immutable, so a shallow copy is a full copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
