package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ChartOptions controls HTML chart output.
type ChartOptions struct {
	Title    string
	Subtitle string
	// AssetsHost overrides where echarts.min.js is loaded from. Empty uses
	// the go-echarts default CDN.
	AssetsHost string
	Width      string
	Height     string
}

func (o ChartOptions) withDefaults() ChartOptions {
	if o.Width == "" {
		o.Width = "900px"
	}
	if o.Height == "" {
		o.Height = "700px"
	}
	return o
}

// NewLineChart builds an interactive chart of series on plane.
func NewLineChart(series []Series, plane Plane, o ChartOptions) (*charts.Line, error) {
	total := 0
	for _, s := range series {
		total += len(s.Points)
	}
	if total == 0 {
		return nil, ErrNoData
	}

	o = o.withDefaults()
	h, v := plane.Axes()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  o.Title,
			Width:      o.Width,
			Height:     o.Height,
			AssetsHost: o.AssetsHost,
		}),
		charts.WithTitleOpts(opts.Title{Title: o.Title, Subtitle: o.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: h, NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: v, NameLocation: "middle", NameGap: 30}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)

	for _, s := range series {
		data := make([]opts.LineData, 0, len(s.Points))
		for _, p := range s.Points {
			data = append(data, opts.LineData{Value: []interface{}{p.X, p.Y}})
		}

		style := opts.LineStyle{Width: 1}
		if s.Median() {
			style.Width = 2
		} else if s.Quantile {
			style.Type = "dashed"
		}

		line.AddSeries(s.Name, data,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(style),
		)
	}
	return line, nil
}

// WriteChart renders a single-plane chart as a standalone HTML page.
func WriteChart(w io.Writer, series []Series, plane Plane, o ChartOptions) error {
	line, err := NewLineChart(series, plane, o)
	if err != nil {
		return err
	}
	if err := line.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// WriteChartPage renders one chart per plane on a single HTML page.
// project is called once per plane.
func WriteChartPage(w io.Writer, project func(Plane) []Series, o ChartOptions) error {
	page := components.NewPage()
	page.PageTitle = o.Title
	if o.AssetsHost != "" {
		page.SetAssetsHost(o.AssetsHost)
	}

	added := 0
	for _, plane := range []Plane{PlaneXY, PlaneXZ, PlaneYZ} {
		po := o
		po.Subtitle = fmt.Sprintf("%s projection", plane)
		line, err := NewLineChart(project(plane), plane, po)
		if err != nil {
			continue
		}
		page.AddCharts(line)
		added++
	}
	if added == 0 {
		return ErrNoData
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}
