// Package render draws imported trajectories: static PNG projections with
// gonum/plot and interactive HTML charts with go-echarts.
//
// Both renderers consume the same projected series, so a chart and a plot
// of one trajectory always show the same points.
package render

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/plot/plotter"

	"github.com/thibequation/trajectory/internal/core"
)

// Plane is a 2D projection of the x, y, z coordinates.
type Plane string

const (
	PlaneXY Plane = "xy"
	PlaneXZ Plane = "xz"
	PlaneYZ Plane = "yz"
)

// ParsePlane converts a query or flag value into a Plane. Empty means xy.
func ParsePlane(s string) (Plane, error) {
	switch p := Plane(strings.ToLower(s)); p {
	case "":
		return PlaneXY, nil
	case PlaneXY, PlaneXZ, PlaneYZ:
		return p, nil
	}
	return "", fmt.Errorf("invalid plane %q: must be xy, xz or yz", s)
}

// Axes returns the horizontal and vertical dimension names.
func (p Plane) Axes() (string, string) {
	s := string(p)
	if len(s) != 2 {
		return "x", "y"
	}
	return s[:1], s[1:]
}

// Series is one projected polyline.
type Series struct {
	Name string
	// Quantile is set for envelope series; Level is then the percentile.
	Quantile bool
	Level    int
	Points   plotter.XYs
}

// Median reports whether s is the q50 series of an envelope.
func (s Series) Median() bool { return s.Quantile && s.Level == 50 }

// Project returns the series of tr on plane. Deterministic and Monte-Carlo
// runs give one series; a quantile envelope gives one per level present on
// both axes. Points with a non-finite coordinate on either axis are dropped.
func Project(tr *core.Trajectory, plane Plane, name string) []Series {
	if tr == nil {
		return nil
	}
	if name == "" {
		name = tr.Source
	}
	h, v := plane.Axes()

	if tr.Kind != core.KindQuantiles {
		pts := make(plotter.XYs, 0, len(tr.Points))
		for _, p := range tr.Points {
			a, _ := p.Get(h)
			b, _ := p.Get(v)
			if x, y, ok := finitePair(a, b); ok {
				pts = append(pts, plotter.XY{X: x, Y: y})
			}
		}
		return []Series{{Name: name, Points: pts}}
	}

	byLevel := make(map[int]plotter.XYs)
	for _, p := range tr.Points {
		hv := make(map[int]core.Value)
		vv := make(map[int]core.Value)
		for _, q := range p.Quantiles {
			switch q.Dim {
			case h:
				hv[q.Level] = q.Value
			case v:
				vv[q.Level] = q.Value
			}
		}
		for level, a := range hv {
			b, ok := vv[level]
			if !ok {
				continue
			}
			if x, y, ok := finitePair(a, b); ok {
				byLevel[level] = append(byLevel[level], plotter.XY{X: x, Y: y})
			}
		}
	}

	levels := make([]int, 0, len(byLevel))
	for l := range byLevel {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	out := make([]Series, 0, len(levels))
	for _, l := range levels {
		out = append(out, Series{
			Name:     fmt.Sprintf("%s q%02d", name, l),
			Quantile: true,
			Level:    l,
			Points:   byLevel[l],
		})
	}
	return out
}

// ProjectAll projects every trajectory, naming Monte-Carlo runs by index.
func ProjectAll(trs []*core.Trajectory, plane Plane) []Series {
	var out []Series
	for i, tr := range trs {
		name := ""
		if tr != nil && tr.Kind == core.KindMonteCarlo {
			name = fmt.Sprintf("sim %d", i+1)
		}
		out = append(out, Project(tr, plane, name)...)
	}
	return out
}

func finitePair(a, b core.Value) (float64, float64, bool) {
	if !a.Finite() || !b.Finite() {
		return 0, 0, false
	}
	x, _ := a.Float()
	y, _ := b.Float()
	return x, y, true
}
