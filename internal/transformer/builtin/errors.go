// Package builtin contains the reusable table helpers the cleaning, joining
// and aggregation stages are built from. Every helper is pure: it returns a
// new table and leaves its input untouched.
package builtin

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingColumns = errors.New("missing required columns")
	ErrEmptyInput     = errors.New("empty input")
	ErrMissingJoinKey = errors.New("missing join key")
	ErrDuplicateKeys  = errors.New("duplicate join keys")
	ErrInvalidBins    = errors.New("invalid bins")
)

// MissingColumnsError names every required column that is absent.
type MissingColumnsError struct {
	Operation string
	Columns   []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns for %s: [%s]", e.Operation, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnsError) Unwrap() error { return ErrMissingColumns }
