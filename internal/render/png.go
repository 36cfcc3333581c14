package render

import (
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("no points to render")

// PlotOptions controls PNG output.
type PlotOptions struct {
	Title  string
	Width  vg.Length
	Height vg.Length
}

// DefaultPlotOptions returns a 8x8 inch canvas.
func DefaultPlotOptions() PlotOptions {
	return PlotOptions{Width: 8 * vg.Inch, Height: 8 * vg.Inch}
}

// WritePNG draws series on plane and writes the PNG to w. Quantile medians
// are drawn solid and thicker; other levels are dashed.
func WritePNG(w io.Writer, series []Series, plane Plane, o PlotOptions) error {
	p, err := newPlot(series, plane, o)
	if err != nil {
		return err
	}

	if o.Width <= 0 {
		o.Width = 8 * vg.Inch
	}
	if o.Height <= 0 {
		o.Height = o.Width
	}

	wt, err := p.WriterTo(o.Width, o.Height, "png")
	if err != nil {
		return fmt.Errorf("png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

func newPlot(series []Series, plane Plane, o PlotOptions) (*plot.Plot, error) {
	total := 0
	for _, s := range series {
		total += len(s.Points)
	}
	if total == 0 {
		return nil, ErrNoData
	}

	h, v := plane.Axes()
	p := plot.New()
	p.Title.Text = o.Title
	p.X.Label.Text = h
	p.Y.Label.Text = v
	p.Add(plotter.NewGrid())

	for i, s := range series {
		if len(s.Points) == 0 {
			continue
		}
		line, err := plotter.NewLine(s.Points)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		if s.Median() {
			line.Width = vg.Points(2)
		} else if s.Quantile {
			line.Dashes = plotutil.Dashes(1)
		}
		p.Add(line)
		p.Legend.Add(s.Name, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}
