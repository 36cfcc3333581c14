package core

import (
	"math"
	"testing"

	"github.com/thibequation/trajectory/internal/units"
)

// timeSeries builds monte-carlo points at the origin with the given times.
func timeSeries(ts ...Value) []Point {
	points := make([]Point, len(ts))
	for i, t := range ts {
		points[i] = Point{Kind: KindMonteCarlo, T: t, X: Number(0), Y: Number(0), Z: Number(0)}
	}
	return points
}

func mustValidator(t *testing.T, unit string) *PhysicsValidator {
	t.Helper()
	v, err := NewPhysicsValidator(unit)
	if err != nil {
		t.Fatalf("NewPhysicsValidator(%q): %v", unit, err)
	}
	return v
}

func TestValidate_TimeOrder(t *testing.T) {
	v := mustValidator(t, "")

	tests := []struct {
		name      string
		points    []Point
		wantValid bool
		wantIdx   []int
	}{
		{
			name:      "strictly increasing",
			points:    timeSeries(Number(0), Number(1), Number(2.5), Number(10)),
			wantValid: true,
		},
		{
			name:    "one step back",
			points:  timeSeries(Number(0), Number(1), Number(0.5)),
			wantIdx: []int{2},
		},
		{
			name:    "repeated time is not increasing",
			points:  timeSeries(Number(0), Number(1), Number(1)),
			wantIdx: []int{2},
		},
		{
			name:      "single point",
			points:    timeSeries(Number(3)),
			wantValid: true,
		},
		{
			name:      "empty",
			points:    nil,
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := v.Validate(tt.points, KindMonteCarlo)
			if r.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (issues %v)", r.Valid, tt.wantValid, r.Messages())
			}
			if got := r.Count(IssueTimeOrder); got != len(tt.wantIdx) {
				t.Fatalf("time_order issues = %d, want %d", got, len(tt.wantIdx))
			}
			for i, idx := range tt.wantIdx {
				if r.Issues[i].Index != idx {
					t.Errorf("issue %d at index %d, want %d", i, r.Issues[i].Index, idx)
				}
			}
		})
	}
}

func TestValidate_NonNumericTime(t *testing.T) {
	v := mustValidator(t, "")
	r := v.Validate(timeSeries(Number(0), Text("later"), Number(2)), KindMonteCarlo)

	if r.Valid {
		t.Fatal("Valid = true for non-numeric time")
	}
	if got := r.Count(IssueNonNumericKey); got != 2 {
		t.Errorf("time_not_numeric issues = %d, want 2", got)
	}
	if got := r.Count(IssueTimeOrder); got != 0 {
		t.Errorf("time_order issues = %d, want 0", got)
	}
}

func TestValidate_NonFiniteCoordinates(t *testing.T) {
	v := mustValidator(t, "")
	points := []Point{
		{Kind: KindMonteCarlo, T: Number(0), X: Number(math.Inf(1)), Y: Null(), Z: Number(1)},
		{Kind: KindMonteCarlo, T: Number(1), X: Number(0), Y: Text("n/a"), Z: Number(1)},
	}

	r := v.Validate(points, KindMonteCarlo)
	if got := r.Count(IssueNonFinite); got != 2 {
		t.Fatalf("non_finite issues = %d, want 2 (%v)", got, r.Messages())
	}
	if r.Issues[0].Field != "x" || r.Issues[0].Index != 0 {
		t.Errorf("first issue = %+v, want x at 0", r.Issues[0])
	}
	if r.Issues[1].Field != "y" || r.Issues[1].Index != 1 {
		t.Errorf("second issue = %+v, want y at 1", r.Issues[1])
	}
}

func TestValidate_QuantileColumns(t *testing.T) {
	res, err := NewParser(0).Parse("t,x_q05,x_q50,y_q50,z_q50\n0,1e999,1,2,3\n", KindQuantiles)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	r := mustValidator(t, "").Validate(res.Points, KindQuantiles)
	if r.Count(IssueNonFinite) != 1 || r.Issues[0].Field != "x_q05" {
		t.Errorf("issues = %+v, want one non_finite on x_q05", r.Issues)
	}
}

func TestValidate_Velocity(t *testing.T) {
	det := func(vx, vy, vz Value) []Point {
		return []Point{{
			Kind: KindDeterministic,
			T:    Number(0),
			X:    Number(0), Y: Number(0), Z: Number(0),
			VX: vx, VY: vy, VZ: vz,
		}}
	}

	tests := []struct {
		name    string
		unit    string
		points  []Point
		kind    Kind
		want    IssueCode
		wantNum int
	}{
		{
			name:    "superluminal in m/s",
			unit:    units.MPS,
			points:  det(Number(3.5e8), Number(0), Number(0)),
			kind:    KindDeterministic,
			want:    IssueSuperluminal,
			wantNum: 1,
		},
		{
			name:    "exactly c is allowed",
			unit:    units.MPS,
			points:  det(Number(units.SpeedOfLightMPS), Number(-units.SpeedOfLightMPS), Number(0)),
			kind:    KindDeterministic,
			want:    IssueSuperluminal,
			wantNum: 0,
		},
		{
			name:    "negative superluminal",
			unit:    units.MPS,
			points:  det(Number(0), Number(-4e8), Number(0)),
			kind:    KindDeterministic,
			want:    IssueSuperluminal,
			wantNum: 1,
		},
		{
			name:    "km/s limit",
			unit:    units.KMPS,
			points:  det(Number(3.5e5), Number(2.9e5), Number(0)),
			kind:    KindDeterministic,
			want:    IssueSuperluminal,
			wantNum: 1,
		},
		{
			name:    "infinite velocity",
			unit:    units.MPS,
			points:  det(Number(math.Inf(-1)), Number(0), Null()),
			kind:    KindDeterministic,
			want:    IssueNonFinite,
			wantNum: 1,
		},
		{
			name:    "monte-carlo skips velocity checks",
			unit:    units.MPS,
			points:  det(Number(3.5e8), Number(0), Number(0)),
			kind:    KindMonteCarlo,
			want:    IssueSuperluminal,
			wantNum: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := mustValidator(t, tt.unit).Validate(tt.points, tt.kind)
			if got := r.Count(tt.want); got != tt.wantNum {
				t.Errorf("%s issues = %d, want %d (%v)", tt.want, got, tt.wantNum, r.Messages())
			}
		})
	}
}

func TestNewPhysicsValidator(t *testing.T) {
	v := mustValidator(t, "")
	if v.Unit != units.MPS || v.SpeedLimit != units.SpeedOfLightMPS {
		t.Errorf("default validator = %+v", v)
	}

	if _, err := NewPhysicsValidator("furlongs"); err == nil {
		t.Error("expected error for unknown unit")
	}
}
