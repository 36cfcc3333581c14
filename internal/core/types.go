package core

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Kind selects the required-field rules and validation behavior of an import.
type Kind string

const (
	KindDeterministic Kind = "deterministic"
	KindQuantiles     Kind = "quantiles"
	KindMonteCarlo    Kind = "monte-carlo"
)

// AllKinds lists every trajectory kind in import order.
var AllKinds = []Kind{KindDeterministic, KindQuantiles, KindMonteCarlo}

// ParseKind converts a user-supplied name into a Kind.
// "montecarlo" and "monte_carlo" are accepted as aliases.
func ParseKind(s string) (Kind, error) {
	switch s {
	case string(KindDeterministic):
		return KindDeterministic, nil
	case string(KindQuantiles):
		return KindQuantiles, nil
	case string(KindMonteCarlo), "montecarlo", "monte_carlo":
		return KindMonteCarlo, nil
	}
	return "", &UnsupportedKindError{Kind: Kind(s)}
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindDeterministic, KindQuantiles, KindMonteCarlo:
		return true
	}
	return false
}

// ValueKind tags the dynamic type carried by a Value.
type ValueKind uint8

const (
	ValueNull ValueKind = iota
	ValueNumber
	ValueString
)

// Value is a single coerced CSV cell: null, a number, or a string.
// The zero Value is null.
type Value struct {
	kind ValueKind
	num  float64
	str  string
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Number returns a numeric Value.
func Number(f float64) Value { return Value{kind: ValueNumber, num: f} }

// Text returns a string Value.
func Text(s string) Value { return Value{kind: ValueString, str: s} }

// Kind returns the dynamic type of v.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == ValueNull }

// Float returns the numeric value and true if v is a number.
func (v Value) Float() (float64, bool) {
	if v.kind != ValueNumber {
		return 0, false
	}
	return v.num, true
}

// Finite reports whether v is a finite number.
func (v Value) Finite() bool {
	return v.kind == ValueNumber && !math.IsNaN(v.num) && !math.IsInf(v.num, 0)
}

// Str returns the string payload and true if v is a string.
func (v Value) Str() (string, bool) {
	if v.kind != ValueString {
		return "", false
	}
	return v.str, true
}

// String formats v for messages.
func (v Value) String() string {
	switch v.kind {
	case ValueNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case ValueString:
		return v.str
	default:
		return "null"
	}
}

// MarshalJSON encodes null, a number, or a string. JSON has no infinities,
// so non-finite numbers are written as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueNumber:
		if !v.Finite() {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.num)
	case ValueString:
		return json.Marshal(v.str)
	default:
		return []byte("null"), nil
	}
}

// Field is a named value carried through unmodified.
type Field struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

// QuantileValue is one <dim>_q<NN> column of a quantile record.
type QuantileValue struct {
	Column string `json:"column"`
	Dim    string `json:"dim"`
	Level  int    `json:"level"`
	Value  Value  `json:"value"`
}

// Point is one trajectory sample.
//
// Required fields are typed members; which ones are meaningful depends on
// Kind. Columns the kind does not know about travel in Extra.
type Point struct {
	Kind Kind
	T    Value

	// deterministic and monte-carlo
	X, Y, Z Value

	// deterministic only
	VX, VY, VZ Value

	// quantiles only, in header order
	Quantiles []QuantileValue

	// unknown columns, in header order
	Extra []Field

	// headers is shared by every point from the same parse
	headers []string
	// quantileCols maps header name to its index in Quantiles
	quantileCols map[string]int
}

// Headers returns the header row this point was parsed from.
func (p Point) Headers() []string { return p.headers }

// Get returns the value of the named column and whether the point has it.
func (p Point) Get(name string) (Value, bool) {
	switch name {
	case "t":
		return p.T, true
	}
	if p.Kind != KindQuantiles {
		switch name {
		case "x":
			return p.X, true
		case "y":
			return p.Y, true
		case "z":
			return p.Z, true
		}
	}
	if p.Kind == KindDeterministic {
		switch name {
		case "vx":
			return p.VX, true
		case "vy":
			return p.VY, true
		case "vz":
			return p.VZ, true
		}
	}
	if i, ok := p.quantileCols[name]; ok {
		return p.Quantiles[i].Value, true
	}
	for i := len(p.Extra) - 1; i >= 0; i-- {
		if p.Extra[i].Name == name {
			return p.Extra[i].Value, true
		}
	}
	return Null(), false
}

// Fields returns every column in header order. A repeated header appears
// once, with the value of its last occurrence.
func (p Point) Fields() []Field {
	out := make([]Field, 0, len(p.headers))
	seen := make(map[string]bool, len(p.headers))
	for _, h := range p.headers {
		if seen[h] {
			continue
		}
		seen[h] = true
		v, _ := p.Get(h)
		out = append(out, Field{Name: h, Value: v})
	}
	return out
}

// Median returns the q50 value of dim for a quantile record.
func (p Point) Median(dim string) (Value, bool) {
	i, ok := p.quantileCols[dim+"_q50"]
	if !ok {
		return Null(), false
	}
	return p.Quantiles[i].Value, true
}

// MarshalJSON encodes the point as an object keyed by header name.
// Keys are emitted in header order.
func (p Point) MarshalJSON() ([]byte, error) {
	fields := p.Fields()
	buf := make([]byte, 0, 16*len(fields)+2)
	buf = append(buf, '{')
	for i, f := range fields {
		if i > 0 {
			buf = append(buf, ',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf = append(buf, key...)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// clone returns a copy of p whose slices can be modified independently.
func (p Point) clone() Point {
	c := p
	if p.Quantiles != nil {
		c.Quantiles = append([]QuantileValue(nil), p.Quantiles...)
	}
	if p.Extra != nil {
		c.Extra = append([]Field(nil), p.Extra...)
	}
	return c
}

// Range is the min/max/span of one axis.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Span float64 `json:"span"`
}

// TimeRange is the extent of a sequence's time base.
type TimeRange struct {
	Min      float64 `json:"tMin"`
	Max      float64 `json:"tMax"`
	Duration float64 `json:"duration"`
}

// SpatialExtent is the bounding box of a sequence.
type SpatialExtent struct {
	X         Range   `json:"xRange"`
	Y         Range   `json:"yRange"`
	Z         Range   `json:"zRange"`
	MaxExtent float64 `json:"maxExtent"`
}

// Metadata is derived once per stored sequence at import time.
type Metadata struct {
	Headers       []string      `json:"headers"`
	PointCount    int           `json:"pointCount"`
	TimeRange     TimeRange     `json:"timeRange"`
	SpatialExtent SpatialExtent `json:"spatialExtent"`
	Quantiles     []int         `json:"quantiles,omitempty"`
	SkippedRows   int           `json:"skippedRows"`
	Truncated     bool          `json:"truncated"`
}

// clone returns a copy whose slices are not shared with m.
func (m Metadata) clone() Metadata {
	if m.Headers != nil {
		m.Headers = append([]string(nil), m.Headers...)
	}
	m.Quantiles = cloneInts(m.Quantiles)
	return m
}

// Trajectory is one imported point sequence owned by the Adapter.
// Points must be treated as read-only.
type Trajectory struct {
	ID         string            `json:"id"`
	Kind       Kind              `json:"type"`
	Source     string            `json:"source"`
	Points     []Point           `json:"data"`
	Metadata   Metadata          `json:"metadata"`
	Report     *ValidationReport `json:"validation,omitempty"`
	ImportedAt time.Time         `json:"importedAt"`
}

// ImportResult is returned by a successful import.
type ImportResult struct {
	Kind Kind `json:"type"`
	// SimulationIndex is the position in the Monte-Carlo list, or -1.
	SimulationIndex int               `json:"simulationIndex"`
	Trajectory      *Trajectory       `json:"trajectory"`
	Warnings        []string          `json:"warnings,omitempty"`
	Skipped         []RowDiagnostic   `json:"skipped,omitempty"`
	Report          *ValidationReport `json:"validation,omitempty"`
}

// ImportError is one entry of the adapter's error log.
type ImportError struct {
	Kind   Kind      `json:"type"`
	Source string    `json:"source"`
	Err    error     `json:"-"`
	At     time.Time `json:"at"`
}

// MarshalJSON includes the error text and its support code.
func (e ImportError) MarshalJSON() ([]byte, error) {
	msg := MapError(e.Err)
	return json.Marshal(struct {
		Kind   Kind      `json:"type"`
		Source string    `json:"source"`
		Error  string    `json:"error"`
		Code   string    `json:"code"`
		At     time.Time `json:"at"`
	}{e.Kind, e.Source, errString(e.Err), msg.Code, e.At})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
