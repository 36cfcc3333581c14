package core

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Normalize recenters points on their centroid and scales them so the
// farthest point lies at distance 1.
//
// Only points with finite x, y and z contribute to the centroid and the
// scale. Every finite coordinate is then mapped to (c - centroid) * scale;
// null, non-finite and non-numeric coordinates pass through unchanged, as
// do all other fields. When every contributing point coincides the scale
// is 1.
//
// Quantile records are positioned by their q50 series: the transform
// derived from the medians is applied to every quantile level of the same
// dimension so the envelope keeps its shape around the median.
//
// Normalize does not modify its argument.
func Normalize(points []Point) []Point {
	xs, ys, zs := positions(points)

	center := [3]float64{}
	if len(xs) > 0 {
		center = [3]float64{stat.Mean(xs, nil), stat.Mean(ys, nil), stat.Mean(zs, nil)}
	}

	maxDist := 0.0
	for i := range xs {
		d := floats.Distance([]float64{xs[i], ys[i], zs[i]}, center[:], 2)
		if d > maxDist {
			maxDist = d
		}
	}

	scale := 1.0
	if maxDist > 0 {
		scale = 1.0 / maxDist
	}

	shift := func(v Value, axis int) Value {
		if !v.Finite() {
			return v
		}
		f, _ := v.Float()
		return Number((f - center[axis]) * scale)
	}

	out := make([]Point, len(points))
	for i, p := range points {
		n := p.clone()
		if p.Kind == KindQuantiles {
			for j, q := range n.Quantiles {
				if axis := axisIndex(q.Dim); axis >= 0 {
					n.Quantiles[j].Value = shift(q.Value, axis)
				}
			}
		} else {
			n.X = shift(p.X, 0)
			n.Y = shift(p.Y, 1)
			n.Z = shift(p.Z, 2)
		}
		out[i] = n
	}
	return out
}

// positions returns the coordinates of every point whose x, y and z are all
// finite.
func positions(points []Point) (xs, ys, zs []float64) {
	for _, p := range points {
		x, y, z := position(p)
		if !x.Finite() || !y.Finite() || !z.Finite() {
			continue
		}
		fx, _ := x.Float()
		fy, _ := y.Float()
		fz, _ := z.Float()
		xs = append(xs, fx)
		ys = append(ys, fy)
		zs = append(zs, fz)
	}
	return xs, ys, zs
}

// position returns the spatial coordinates of p, the medians for quantile
// records.
func position(p Point) (x, y, z Value) {
	if p.Kind == KindQuantiles {
		x, _ = p.Median("x")
		y, _ = p.Median("y")
		z, _ = p.Median("z")
		return x, y, z
	}
	return p.X, p.Y, p.Z
}

func axisIndex(dim string) int {
	switch dim {
	case "x":
		return 0
	case "y":
		return 1
	case "z":
		return 2
	}
	return -1
}
