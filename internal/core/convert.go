package core

// convert.go turns raw CSV cells into typed values.
//
// Trajectory files come out of notebooks, so the cells are mostly plain
// floats, sometimes in scientific notation, with "NaN" or "null" where a
// solver produced nothing. Anything that is not numeric is kept as text so
// categorical columns (labels, GKSC grades) pass through untouched.

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex matches a signed decimal with optional exponent.
// A leading '+' and a bare ".5" are not numbers.
var numericRegex = regexp.MustCompile(`^-?\d+\.?\d*([eE][+-]?\d+)?$`)

// ParseValue coerces a raw cell into null, a number, or a string.
//
// Empty cells and case-insensitive "null"/"nan" are null. Text matching
// numericRegex becomes a number; an out-of-range literal becomes ±Inf,
// which the physics validator reports later. Anything else is returned as
// the trimmed string.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)

	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "nan") {
		return Null()
	}

	if numericRegex.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return Text(s)
		}
		return Number(f)
	}

	return Text(s)
}
