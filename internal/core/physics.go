package core

import (
	"fmt"
	"math"

	"github.com/thibequation/trajectory/internal/units"
)

// IssueCode classifies a physical-consistency finding.
type IssueCode string

const (
	IssueTimeOrder     IssueCode = "time_order"
	IssueNonFinite     IssueCode = "non_finite"
	IssueSuperluminal  IssueCode = "superluminal"
	IssueNonNumericKey IssueCode = "time_not_numeric"
)

// Issue is one data-quality finding at a point.
type Issue struct {
	Index   int       `json:"index"`
	Field   string    `json:"field"`
	Code    IssueCode `json:"code"`
	Message string    `json:"message"`
}

func (i Issue) String() string { return i.Message }

// ValidationReport collects every finding of a validation run.
type ValidationReport struct {
	Kind   Kind    `json:"type"`
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}

// Messages returns the issues as plain strings.
func (r ValidationReport) Messages() []string {
	out := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		out[i] = issue.Message
	}
	return out
}

// Count returns how many issues carry code.
func (r ValidationReport) Count(code IssueCode) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Code == code {
			n++
		}
	}
	return n
}

// PhysicsValidator checks time ordering, finite coordinates and, for
// deterministic runs, velocities against a speed limit.
//
// Velocities are compared in Unit; SpeedLimit is c expressed in that unit.
type PhysicsValidator struct {
	SpeedLimit float64
	Unit       string
}

// NewPhysicsValidator creates a validator for velocities given in unit.
// An unknown unit is rejected; an empty unit means m/s.
func NewPhysicsValidator(unit string) (*PhysicsValidator, error) {
	if unit == "" {
		unit = units.MPS
	}
	if !units.IsValid(unit) {
		return nil, fmt.Errorf("invalid velocity unit %q: must be one of %s", unit, units.GetValidUnitsString())
	}
	return &PhysicsValidator{
		SpeedLimit: units.SpeedOfLight(unit),
		Unit:       unit,
	}, nil
}

// Validate never fails. All findings are returned in check order:
// time monotonicity, finite coordinates, then velocities.
func (v *PhysicsValidator) Validate(points []Point, kind Kind) ValidationReport {
	var issues []Issue

	for i := 1; i < len(points); i++ {
		prev, okPrev := points[i-1].T.Float()
		cur, okCur := points[i].T.Float()
		if !okPrev || !okCur {
			issues = append(issues, Issue{
				Index:   i,
				Field:   "t",
				Code:    IssueNonNumericKey,
				Message: fmt.Sprintf("point %d: time not numeric (t=%s, previous t=%s)", i, points[i].T, points[i-1].T),
			})
			continue
		}
		if !(cur > prev) {
			issues = append(issues, Issue{
				Index:   i,
				Field:   "t",
				Code:    IssueTimeOrder,
				Message: fmt.Sprintf("point %d: time not monotonic (t=%s <= t=%s)", i, points[i].T, points[i-1].T),
			})
		}
	}

	for i, p := range points {
		for _, f := range coordinateFields(p) {
			if f.Value.IsNull() || f.Value.Finite() {
				continue
			}
			issues = append(issues, Issue{
				Index:   i,
				Field:   f.Name,
				Code:    IssueNonFinite,
				Message: fmt.Sprintf("point %d: %s not finite (%s)", i, f.Name, f.Value),
			})
		}
	}

	if kind == KindDeterministic {
		for i, p := range points {
			for _, f := range []Field{{"vx", p.VX}, {"vy", p.VY}, {"vz", p.VZ}} {
				if f.Value.IsNull() {
					continue
				}
				if !f.Value.Finite() {
					issues = append(issues, Issue{
						Index:   i,
						Field:   f.Name,
						Code:    IssueNonFinite,
						Message: fmt.Sprintf("point %d: %s not finite (%s)", i, f.Name, f.Value),
					})
				}
				if speed, ok := f.Value.Float(); ok && math.Abs(speed) > v.SpeedLimit {
					issues = append(issues, Issue{
						Index:   i,
						Field:   f.Name,
						Code:    IssueSuperluminal,
						Message: fmt.Sprintf("point %d: %s exceeds the speed of light (%s %s)", i, f.Name, f.Value, v.Unit),
					})
				}
			}
		}
	}

	return ValidationReport{Kind: kind, Valid: len(issues) == 0, Issues: issues}
}

// coordinateFields returns the spatial values of p: x, y, z for
// deterministic and monte-carlo records, every x/y/z quantile otherwise.
func coordinateFields(p Point) []Field {
	if p.Kind != KindQuantiles {
		return []Field{{"x", p.X}, {"y", p.Y}, {"z", p.Z}}
	}
	fields := make([]Field, 0, len(p.Quantiles))
	for _, q := range p.Quantiles {
		if isSpatialDim(q.Dim) {
			fields = append(fields, Field{Name: q.Column, Value: q.Value})
		}
	}
	return fields
}

func isSpatialDim(dim string) bool {
	return dim == "x" || dim == "y" || dim == "z"
}
