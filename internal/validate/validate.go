package validate

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Error carries every violated rule of a request.
type Error struct {
	Violations []string
}

func (e *Error) Error() string { return strings.Join(e.Violations, ", ") }

// Rule inspects a request and returns a violation message, or "" when satisfied.
type Rule[T any] func(T) string

// RuleSet is an ordered list of rules evaluated together.
type RuleSet[T any] []Rule[T]

// Violations runs every rule, not just the first failing one.
func (rs RuleSet[T]) Violations(v T) []string {
	var out []string
	for _, r := range rs {
		if msg := r(v); msg != "" {
			out = append(out, msg)
		}
	}
	return out
}

// Check is the flag variant used at the transport boundary.
func (rs RuleSet[T]) Check(v T) (bool, string) {
	if vs := rs.Violations(v); len(vs) > 0 {
		return false, strings.Join(vs, ", ")
	}
	return true, ""
}

// Must is the strict variant: it returns *Error when any rule fails.
func (rs RuleSet[T]) Must(v T) error {
	if vs := rs.Violations(v); len(vs) > 0 {
		return &Error{Violations: vs}
	}
	return nil
}

// NotEmpty rejects a missing (empty) string. Whitespace counts as content.
func NotEmpty(field, s string) string {
	if s == "" {
		return fmt.Sprintf("'%s' must not be empty.", field)
	}
	return ""
}

// Length counts characters, not bytes. Empty strings are left to NotEmpty.
func Length(field, s string, lo, hi int) string {
	n := utf8.RuneCountInString(s)
	if n == 0 || (n >= lo && n <= hi) {
		return ""
	}
	return fmt.Sprintf("'%s' must be between %d and %d characters. You entered %d characters.", field, lo, hi, n)
}

func MaxLength(field, s string, hi int) string {
	if n := utf8.RuneCountInString(s); n > hi {
		return fmt.Sprintf("The length of '%s' must be %d characters or fewer. You entered %d characters.", field, hi, n)
	}
	return ""
}

// Present rejects a missing optional number.
func Present(field string, v *int) string {
	if v == nil {
		return fmt.Sprintf("'%s' must not be empty.", field)
	}
	return ""
}

// AtLeast skips nil values; pair it with Present when the value is required.
func AtLeast[N ~int | ~int64](field string, v *N, lo N) string {
	if v != nil && *v < lo {
		return fmt.Sprintf("'%s' must be greater than or equal to '%v'.", field, lo)
	}
	return ""
}
