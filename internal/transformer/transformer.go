// Package transformer runs ordered table steps.
package transformer

import (
	"fmt"

	"retailetl/pkg/records"
)

// Step is one named table-to-table transform. Fn must not modify its input.
type Step struct {
	Name string
	Fn   func(records.Table) (records.Table, error)
}

// Pure wraps an infallible transform as a Step.
func Pure(name string, fn func(records.Table) records.Table) Step {
	return Step{Name: name, Fn: func(t records.Table) (records.Table, error) { return fn(t), nil }}
}

// Chain is an ordered list of steps.
type Chain []Step

// Apply runs the steps in order, feeding each the previous result. It stops at
// the first failing step and returns its error annotated with the step name.
func (c Chain) Apply(in records.Table) (records.Table, error) {
	out := in
	for _, s := range c {
		if s.Fn == nil {
			continue
		}
		next, err := s.Fn(out)
		if err != nil {
			return records.Table{}, fmt.Errorf("%s: %w", s.Name, err)
		}
		out = next
	}
	return out, nil
}

// Names lists the step names in order.
func (c Chain) Names() []string {
	out := make([]string, len(c))
	for i, s := range c {
		out[i] = s.Name
	}
	return out
}
