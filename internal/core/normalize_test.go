package core

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

const tol = 1e-12

func xyz(x, y, z float64) Point {
	return Point{Kind: KindMonteCarlo, T: Number(0), X: Number(x), Y: Number(y), Z: Number(z)}
}

func coords(t *testing.T, p Point) (float64, float64, float64) {
	t.Helper()
	x, okX := p.X.Float()
	y, okY := p.Y.Float()
	z, okZ := p.Z.Float()
	if !okX || !okY || !okZ {
		t.Fatalf("point %+v has non-numeric coordinates", p)
	}
	return x, y, z
}

func TestNormalize_CenterAndScale(t *testing.T) {
	in := []Point{xyz(0, 0, 0), xyz(2, 0, 0), xyz(1, 1, 0), xyz(1, -1, 0)}
	out := Normalize(in)

	// centroid (1,0,0), farthest distance 1
	want := [][3]float64{{-1, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, -1, 0}}
	for i, p := range out {
		x, y, z := coords(t, p)
		if !scalar.EqualWithinAbs(x, want[i][0], tol) ||
			!scalar.EqualWithinAbs(y, want[i][1], tol) ||
			!scalar.EqualWithinAbs(z, want[i][2], tol) {
			t.Errorf("point %d = (%v,%v,%v), want %v", i, x, y, z, want[i])
		}
	}

	if x, _, _ := coords(t, in[1]); x != 2 {
		t.Error("Normalize modified its input")
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	in := []Point{xyz(3, 7, -2), xyz(10, -4, 5), xyz(-6, 1, 8), xyz(0.5, 0.25, 0.125)}
	once := Normalize(in)
	twice := Normalize(once)

	for i := range once {
		x1, y1, z1 := coords(t, once[i])
		x2, y2, z2 := coords(t, twice[i])
		if !scalar.EqualWithinAbs(x1, x2, 1e-9) ||
			!scalar.EqualWithinAbs(y1, y2, 1e-9) ||
			!scalar.EqualWithinAbs(z1, z2, 1e-9) {
			t.Errorf("point %d changed on second pass: (%v,%v,%v) -> (%v,%v,%v)", i, x1, y1, z1, x2, y2, z2)
		}
	}
}

func TestNormalize_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		in   []Point
	}{
		{name: "single point", in: []Point{xyz(5, 5, 5)}},
		{name: "coincident points", in: []Point{xyz(1, 2, 3), xyz(1, 2, 3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, p := range Normalize(tt.in) {
				x, y, z := coords(t, p)
				if x != 0 || y != 0 || z != 0 {
					t.Errorf("got (%v,%v,%v), want origin", x, y, z)
				}
			}
		})
	}

	if out := Normalize(nil); len(out) != 0 {
		t.Errorf("Normalize(nil) = %v", out)
	}
}

func TestNormalize_NullAndExtraPassThrough(t *testing.T) {
	in := []Point{
		xyz(0, 0, 0),
		xyz(2, 0, 0),
		{Kind: KindMonteCarlo, T: Number(9), X: Null(), Y: Number(100), Z: Number(math.Inf(1)),
			Extra: []Field{{Name: "score", Value: Number(42)}}},
	}
	out := Normalize(in)

	p := out[2]
	if !p.X.IsNull() {
		t.Errorf("null x became %v", p.X)
	}
	if f, _ := p.Z.Float(); !math.IsInf(f, 1) {
		t.Errorf("non-finite z became %v", p.Z)
	}
	// y is finite so it is shifted with the transform of the complete points
	if f, _ := p.Y.Float(); !scalar.EqualWithinAbs(f, 100, tol) {
		t.Errorf("y = %v, want 100 (centroid y 0, scale 1)", f)
	}
	if f, _ := p.T.Float(); f != 9 {
		t.Errorf("t changed to %v", p.T)
	}
	if v, _ := p.Get("score"); v != Number(42) {
		t.Errorf("extra field changed to %v", v)
	}
}

func TestNormalize_QuantilesFollowMedian(t *testing.T) {
	src := "t,x_q05,x_q50,x_q95,y_q50,z_q50\n0,-1,0,1,0,0\n1,1,2,3,0,0\n"
	res, err := NewParser(0).Parse(src, KindQuantiles)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	out := Normalize(res.Points)

	// medians (0,0,0) and (2,0,0): center x=1, scale 1
	want := []map[string]float64{
		{"x_q05": -2, "x_q50": -1, "x_q95": 0},
		{"x_q05": 0, "x_q50": 1, "x_q95": 2},
	}
	for i, p := range out {
		for col, w := range want[i] {
			v, _ := p.Get(col)
			f, _ := v.Float()
			if !scalar.EqualWithinAbs(f, w, tol) {
				t.Errorf("point %d %s = %v, want %v", i, col, f, w)
			}
		}
	}
}
