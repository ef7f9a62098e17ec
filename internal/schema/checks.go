package schema

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"retailetl/pkg/records"
)

// Check is an element-wise predicate applied to every non-null value of a
// column.
type Check struct {
	Name string
	Fn   func(v any) bool
}

func GreaterThan(min float64) Check {
	return Check{Name: fmt.Sprintf("greater_than(%g)", min), Fn: func(v any) bool {
		f, ok := records.AsFloat(v)
		return ok && f > min
	}}
}

func GreaterOrEqual(min float64) Check {
	return Check{Name: fmt.Sprintf("greater_than_or_equal_to(%g)", min), Fn: func(v any) bool {
		f, ok := records.AsFloat(v)
		return ok && f >= min
	}}
}

func LessOrEqual(max float64) Check {
	return Check{Name: fmt.Sprintf("less_than_or_equal_to(%g)", max), Fn: func(v any) bool {
		f, ok := records.AsFloat(v)
		return ok && f <= max
	}}
}

// InRange is inclusive on both ends.
func InRange(min, max float64) Check {
	return Check{Name: fmt.Sprintf("in_range(%g, %g)", min, max), Fn: func(v any) bool {
		f, ok := records.AsFloat(v)
		return ok && f >= min && f <= max
	}}
}

func IsIn(allowed ...string) Check {
	set := make(map[string]struct{}, len(allowed))
	for _, s := range allowed {
		set[s] = struct{}{}
	}
	return Check{Name: fmt.Sprintf("isin(%s)", strings.Join(allowed, ",")), Fn: func(v any) bool {
		s, ok := records.AsString(v)
		if !ok {
			return false
		}
		_, ok = set[s]
		return ok
	}}
}

// Lowercase passes strings that contain at least one cased letter and no
// upper-case letters.
func Lowercase() Check {
	return Check{Name: "islower", Fn: func(v any) bool {
		s, ok := records.AsString(v)
		return ok && hasCased(s) && s == strings.ToLower(s)
	}}
}

// Uppercase passes strings that contain at least one cased letter and no
// lower-case letters.
func Uppercase() Check {
	return Check{Name: "isupper", Fn: func(v any) bool {
		s, ok := records.AsString(v)
		return ok && hasCased(s) && s == strings.ToUpper(s)
	}}
}

// NotAfter passes timestamps at or before limit.
func NotAfter(limit time.Time) Check {
	return Check{Name: "less_than_or_equal_to(" + limit.Format(time.RFC3339) + ")", Fn: func(v any) bool {
		t, ok := records.AsTime(v)
		return ok && !t.After(limit)
	}}
}

func hasCased(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) || unicode.IsLower(r) {
			return true
		}
	}
	return false
}
