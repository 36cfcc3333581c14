package core

import "gonum.org/v1/gonum/floats"

// buildMetadata derives the cached metadata of a parsed sequence.
func buildMetadata(kind Kind, parsed *ParseResult, points []Point) Metadata {
	md := Metadata{
		Headers:       parsed.Headers,
		PointCount:    len(points),
		TimeRange:     ComputeTimeRange(points),
		SpatialExtent: ComputeSpatialExtent(points),
		SkippedRows:   len(parsed.Skipped),
		Truncated:     parsed.Truncated,
	}
	if kind == KindQuantiles {
		md.Quantiles = ExtractQuantiles(parsed.Headers)
	}
	return md
}

// ComputeTimeRange returns the min, max and duration of the finite t values.
// A sequence without any yields the zero range.
func ComputeTimeRange(points []Point) TimeRange {
	return timeRange(appendTimes(nil, points))
}

// ComputeSpatialExtent returns the per-axis bounding box of the finite
// coordinates. For quantile records every quantile level of an axis counts,
// so the box encloses the whole envelope. An axis without finite values
// gets the zero Range.
func ComputeSpatialExtent(points []Point) SpatialExtent {
	var axes [3][]float64
	appendCoords(&axes, points)
	return spatialExtent(&axes)
}

func appendTimes(dst []float64, points []Point) []float64 {
	for _, p := range points {
		if p.T.Finite() {
			t, _ := p.T.Float()
			dst = append(dst, t)
		}
	}
	return dst
}

func appendCoords(axes *[3][]float64, points []Point) {
	add := func(axis int, v Value) {
		if axis >= 0 && v.Finite() {
			f, _ := v.Float()
			axes[axis] = append(axes[axis], f)
		}
	}
	for _, p := range points {
		if p.Kind == KindQuantiles {
			for _, q := range p.Quantiles {
				add(axisIndex(q.Dim), q.Value)
			}
			continue
		}
		add(0, p.X)
		add(1, p.Y)
		add(2, p.Z)
	}
}

func timeRange(times []float64) TimeRange {
	if len(times) == 0 {
		return TimeRange{}
	}
	tMin, tMax := floats.Min(times), floats.Max(times)
	return TimeRange{Min: tMin, Max: tMax, Duration: tMax - tMin}
}

func spatialExtent(axes *[3][]float64) SpatialExtent {
	ext := SpatialExtent{
		X: axisRange(axes[0]),
		Y: axisRange(axes[1]),
		Z: axisRange(axes[2]),
	}
	ext.MaxExtent = max(ext.X.Span, ext.Y.Span, ext.Z.Span)
	return ext
}

func axisRange(vals []float64) Range {
	if len(vals) == 0 {
		return Range{}
	}
	lo, hi := floats.Min(vals), floats.Max(vals)
	return Range{Min: lo, Max: hi, Span: hi - lo}
}

// ensembleExtent is the union over every run, taken from the values rather
// than the per-run ranges so that an axis one run lacks adds nothing.
func ensembleExtent(runs []*Trajectory) (TimeRange, SpatialExtent) {
	var (
		times []float64
		axes  [3][]float64
	)
	for _, run := range runs {
		times = appendTimes(times, run.Points)
		appendCoords(&axes, run.Points)
	}
	return timeRange(times), spatialExtent(&axes)
}
