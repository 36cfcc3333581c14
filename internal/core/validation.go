package core

// validation.go checks header rows before any data row is read.
//
// Validation happens at two levels:
//  1. Required fields: every kind has a minimum header set
//  2. Quantile structure: quantile imports need <dim>_q<NN> columns
//
// Both report every problem at once so a user can fix a file in one pass.

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// spatialDims are the coordinate axes in validation order.
var spatialDims = []string{"x", "y", "z"}

// requiredFields is the minimum header set per kind.
var requiredFields = map[Kind][]string{
	KindDeterministic: {"t", "x", "y", "z", "vx", "vy", "vz"},
	KindQuantiles:     {"t", "x_q50", "y_q50", "z_q50"},
	KindMonteCarlo:    {"t", "x", "y", "z"},
}

// quantileRegex matches a quantile column and captures dim and level.
var quantileRegex = regexp.MustCompile(`^(.*)_q(\d+)$`)

// RequiredFields returns the minimum header set for kind.
func RequiredFields(kind Kind) []string {
	return append([]string(nil), requiredFields[kind]...)
}

// ValidateHeaders checks that every field required by kind is present.
// The returned *SchemaError lists missing fields in required order.
func ValidateHeaders(headers []string, kind Kind) error {
	required, ok := requiredFields[kind]
	if !ok {
		return &UnsupportedKindError{Kind: kind}
	}

	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, field := range required {
		if !present[field] {
			missing = append(missing, field)
		}
	}

	if len(missing) > 0 {
		return &SchemaError{Kind: kind, Missing: missing}
	}
	return nil
}

// ValidateQuantileStructure checks that at least one quantile column exists.
// It returns one warning per spatial dimension that has no quantile column.
func ValidateQuantileStructure(headers []string) ([]string, error) {
	// Same rule as ExtractQuantiles, so a level that does not parse counts
	// for neither.
	dims := make(map[string]bool)
	for _, h := range headers {
		if d, _, ok := splitQuantile(h); ok {
			dims[d] = true
		}
	}

	if len(dims) == 0 {
		return nil, &QuantileStructureError{Headers: headers}
	}

	var warnings []string
	for _, dim := range spatialDims {
		if !dims[dim] {
			warnings = append(warnings, fmt.Sprintf("no quantile found for dimension %s", dim))
		}
	}

	return warnings, nil
}

// ExtractQuantiles returns the distinct quantile levels in ascending order.
func ExtractQuantiles(headers []string) []int {
	seen := make(map[int]bool)
	for _, h := range headers {
		if _, level, ok := splitQuantile(h); ok {
			seen[level] = true
		}
	}

	levels := make([]int, 0, len(seen))
	for l := range seen {
		levels = append(levels, l)
	}
	sort.Ints(levels)
	return levels
}

// splitQuantile parses "x_q05" into ("x", 5).
func splitQuantile(header string) (string, int, bool) {
	m := quantileRegex.FindStringSubmatch(header)
	if m == nil {
		return "", 0, false
	}
	level, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], level, true
}
