package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const deterministicCSV = `t,x,y,z,vx,vy,vz,gksc
0,1,2,3,10,20,30,A
1,2,3,4,11,21,31,B
2,3,4,5,12,22,32,C
`

func TestParse_Deterministic(t *testing.T) {
	res, err := NewParser(0).Parse(deterministicCSV, KindDeterministic)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(res.Points) != 3 {
		t.Fatalf("got %d points, want 3", len(res.Points))
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}

	p := res.Points[1]
	if f, _ := p.T.Float(); f != 1 {
		t.Errorf("T = %v, want 1", p.T)
	}
	if f, _ := p.VY.Float(); f != 21 {
		t.Errorf("VY = %v, want 21", p.VY)
	}

	gksc, ok := p.Get("gksc")
	if !ok {
		t.Fatal("extra column gksc not carried")
	}
	if s, _ := gksc.Str(); s != "B" {
		t.Errorf("gksc = %v, want B", gksc)
	}

	var names []string
	for _, f := range p.Fields() {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff(res.Headers, names); diff != "" {
		t.Errorf("Fields() order mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Quantiles(t *testing.T) {
	src := "t,x_q50,y_q50,z_q50\n0,1,2,3\n1,4,5,6\n"
	res, err := NewParser(0).Parse(src, KindQuantiles)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Points) != 2 {
		t.Fatalf("got %d points, want 2", len(res.Points))
	}

	y, ok := res.Points[1].Median("y")
	if !ok {
		t.Fatal("y median missing")
	}
	if f, _ := y.Float(); f != 5 {
		t.Errorf("y_q50 = %v, want 5", y)
	}

	q := res.Points[0].Quantiles
	if len(q) != 3 || q[0].Dim != "x" || q[0].Level != 50 || q[0].Column != "x_q50" {
		t.Errorf("unexpected quantile layout: %+v", q)
	}
}

func TestParse_LineEndingsAndBlankLines(t *testing.T) {
	src := "t,x,y,z\r\n\r\n0,1,2,3\r\n   \n1,2,3,4\r\n"
	res, err := NewParser(0).Parse(src, KindMonteCarlo)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Points) != 2 {
		t.Fatalf("got %d points, want 2", len(res.Points))
	}
	if f, _ := res.Points[1].Z.Float(); f != 4 {
		t.Errorf("Z = %v, want 4 (CR not stripped?)", res.Points[1].Z)
	}
}

func TestParse_SkipsMismatchedRows(t *testing.T) {
	src := strings.Join([]string{
		"t,x,y,z",
		"0,1,2,3",
		"1,2,3",
		"2,3,4,5",
		"3,4,5,6,7",
	}, "\n")

	res, err := NewParser(0).Parse(src, KindMonteCarlo)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Points) != 2 {
		t.Errorf("got %d points, want 2", len(res.Points))
	}

	want := []RowDiagnostic{
		{Line: 3, Expected: 4, Got: 3, Reason: "incorrect number of columns"},
		{Line: 5, Expected: 4, Got: 5, Reason: "incorrect number of columns"},
	}
	if diff := cmp.Diff(want, res.Skipped); diff != "" {
		t.Errorf("Skipped mismatch (-want +got):\n%s", diff)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "2 lines skipped") {
		t.Errorf("Warnings = %v, want one aggregated skip warning", res.Warnings)
	}
}

func TestParse_PointCap(t *testing.T) {
	tests := []struct {
		rows, maxPoints int
	}{
		{rows: 5, maxPoints: 10},
		{rows: 10, maxPoints: 10},
		{rows: 25, maxPoints: 10},
		{rows: 1, maxPoints: 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d rows cap %d", tt.rows, tt.maxPoints), func(t *testing.T) {
			var b strings.Builder
			b.WriteString("t,x,y,z,vx,vy,vz\n")
			for i := 0; i < tt.rows; i++ {
				fmt.Fprintf(&b, "%d,0,0,0,0,0,0\n", i)
			}

			res, err := NewParser(tt.maxPoints).Parse(b.String(), KindDeterministic)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}

			want := min(tt.rows, tt.maxPoints)
			if len(res.Points) != want {
				t.Errorf("got %d points, want %d", len(res.Points), want)
			}
			wantTruncated := tt.rows > tt.maxPoints
			if res.Truncated != wantTruncated {
				t.Errorf("Truncated = %v, want %v", res.Truncated, wantTruncated)
			}
			if wantTruncated {
				if res.Discarded != tt.rows-tt.maxPoints {
					t.Errorf("Discarded = %d, want %d", res.Discarded, tt.rows-tt.maxPoints)
				}
				if len(res.Warnings) != 1 {
					t.Errorf("Warnings = %v, want exactly one", res.Warnings)
				}
			}
		})
	}
}

func TestParse_DuplicateHeaderLastWins(t *testing.T) {
	src := "t,x,y,z,note,note\n0,1,2,3,first,second\n"
	res, err := NewParser(0).Parse(src, KindMonteCarlo)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v, _ := res.Points[0].Get("note")
	if s, _ := v.Str(); s != "second" {
		t.Errorf("note = %v, want second", v)
	}
	if n := len(res.Points[0].Fields()); n != 5 {
		t.Errorf("Fields() returned %d entries, want 5", n)
	}
}

func TestParse_FatalErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		kind    Kind
		check   func(error) bool
	}{
		{
			name:    "empty content",
			content: "",
			kind:    KindDeterministic,
			check:   func(err error) bool { var e *EmptyInputError; return errors.As(err, &e) },
		},
		{
			name:    "whitespace only",
			content: "\n  \r\n\t\n",
			kind:    KindMonteCarlo,
			check:   func(err error) bool { var e *EmptyInputError; return errors.As(err, &e) },
		},
		{
			name:    "missing velocities",
			content: "t,x,y,z\n0,1,2,3\n",
			kind:    KindDeterministic,
			check:   func(err error) bool { var e *SchemaError; return errors.As(err, &e) },
		},
		{
			name:    "unknown kind",
			content: "t,x,y,z\n",
			kind:    Kind("radar"),
			check:   func(err error) bool { var e *UnsupportedKindError; return errors.As(err, &e) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewParser(0).Parse(tt.content, tt.kind)
			if err == nil {
				t.Fatalf("Parse() = %+v, want error", res)
			}
			if !tt.check(err) {
				t.Errorf("Parse() error = %T %v", err, err)
			}
			if !IsFatal(err) {
				t.Errorf("IsFatal(%v) = false", err)
			}
		})
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	res, err := NewParser(0).Parse("t,x,y,z\n", KindMonteCarlo)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Points) != 0 {
		t.Errorf("got %d points, want 0", len(res.Points))
	}
}
