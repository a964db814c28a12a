package schema

import (
	"math"
	"regexp"
	"slices"
	"unicode/utf8"
)

// Field constraint checks. Each returns nil or a FIELD_CONSTRAINT *Error
// naming field, so Validate methods read as a flat list of checks joined
// with First.

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func Finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return FieldConstraint(field, v, "must be a finite number")
	}
	return nil
}

func NonNegative(field string, v int) error {
	if v < 0 {
		return FieldConstraint(field, v, "must be >= 0")
	}
	return nil
}

// NonNegativeAll checks every element of vs.
func NonNegativeAll(field string, vs []int) error {
	for i, v := range vs {
		if err := NonNegative(Index(field, i), v); err != nil {
			return err
		}
	}
	return nil
}

// Between checks lo <= v <= hi. NaN fails.
func Between(field string, v, lo, hi float64) error {
	if !(v >= lo && v <= hi) {
		return FieldConstraint(field, v, "must be between %g and %g", lo, hi)
	}
	return nil
}

// MinItems checks a collection length lower bound.
func MinItems(field string, n, min int) error {
	if n < min {
		return FieldConstraint(field, n, "must have at least %d item(s), got %d", min, n)
	}
	return nil
}

// ExactItems checks a collection has exactly want elements.
func ExactItems(field string, n, want int) error {
	if n != want {
		return FieldConstraint(field, n, "must have exactly %d items, got %d", want, n)
	}
	return nil
}

// Length checks a string's length in characters is within [min, max].
// max <= 0 means unbounded.
func Length(field, s string, min, max int) error {
	n := utf8.RuneCountInString(s)
	if n < min {
		return FieldConstraint(field, s, "must be at least %d character(s)", min)
	}
	if max > 0 && n > max {
		return FieldConstraint(field, s, "must be at most %d characters", max)
	}
	return nil
}

// NotEmpty checks a required string is non-empty.
func NotEmpty(field, s string) error {
	return Length(field, s, 1, 0)
}

func Matches(field, s string, re *regexp.Regexp) error {
	if !re.MatchString(s) {
		return FieldConstraint(field, s, "must match %s", re)
	}
	return nil
}

// OneOf checks enum membership.
func OneOf[S ~string](field string, v S, allowed ...S) error {
	if !slices.Contains(allowed, v) {
		return FieldConstraint(field, string(v), "must be one of %v", allowed)
	}
	return nil
}

// Each runs check on every element, rooting errors at field[i].
func Each[T any](field string, items []T, check func(T) error) error {
	for i, item := range items {
		if err := check(item); err != nil {
			return At(Index(field, i), err)
		}
	}
	return nil
}
