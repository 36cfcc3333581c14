// Command trajplot imports trajectory CSV files through the same adapter as
// the server, prints what it found and optionally renders the result.
//
// Usage:
//
//	trajplot -kind deterministic -png run.png -plane xz run.csv
//	trajplot -kind monte-carlo -html sims.html sim_001.csv sim_002.csv
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/thibequation/trajectory/internal/core"
	"github.com/thibequation/trajectory/internal/logging"
	"github.com/thibequation/trajectory/internal/render"
	"github.com/thibequation/trajectory/internal/units"
)

// Config holds the command-line settings.
type Config struct {
	Kind        string
	Inputs      []string
	PNG         string
	HTML        string
	Plane       string
	NoNormalize bool
	Strict      bool
	Unit        string
	MaxPoints   int
	JSON        bool
	LogLevel    string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("trajplot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.Kind, "kind", string(core.KindDeterministic), "trajectory type: deterministic, quantiles, monte-carlo")
	fs.StringVar(&cfg.PNG, "png", "", "write a PNG projection to this path")
	fs.StringVar(&cfg.HTML, "html", "", "write an interactive chart page to this path")
	fs.StringVar(&cfg.Plane, "plane", string(render.PlaneXY), "projection plane for -png: xy, xz, yz")
	fs.BoolVar(&cfg.NoNormalize, "no-normalize", false, "keep raw coordinates")
	fs.BoolVar(&cfg.Strict, "strict", false, "fail on physical validation issues")
	fs.StringVar(&cfg.Unit, "unit", units.MPS, "velocity unit: "+units.GetValidUnitsString())
	fs.IntVar(&cfg.MaxPoints, "max-points", core.DefaultMaxPoints, "maximum rows per file")
	fs.BoolVar(&cfg.JSON, "json", false, "print metadata and statistics as JSON")
	fs.StringVar(&cfg.LogLevel, "log-level", "warn", "log level: debug, info, warn, error")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: trajplot [flags] file.csv [file.csv ...]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.Inputs = fs.Args()
	if len(cfg.Inputs) == 0 {
		fs.Usage()
		return nil, errors.New("at least one input file is required")
	}
	return cfg, nil
}

// run executes the command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, "trajplot:", err)
		return 2
	}

	kind, err := core.ParseKind(cfg.Kind)
	if err != nil {
		fmt.Fprintln(stderr, "trajplot:", core.FormatUserError(err))
		return 2
	}
	plane, err := render.ParsePlane(cfg.Plane)
	if err != nil {
		fmt.Fprintln(stderr, "trajplot:", err)
		return 2
	}
	if len(cfg.Inputs) > 1 && kind != core.KindMonteCarlo {
		fmt.Fprintf(stderr, "trajplot: only monte-carlo accepts several files, got %d for %s\n", len(cfg.Inputs), kind)
		return 2
	}

	opts := core.DefaultOptions()
	opts.AutoNormalize = !cfg.NoNormalize
	opts.StrictPhysics = cfg.Strict
	opts.VelocityUnit = cfg.Unit
	opts.MaxPoints = cfg.MaxPoints

	logger := logging.New(stderr, cfg.LogLevel, "text")
	adapter, err := core.NewAdapter(opts, logger)
	if err != nil {
		fmt.Fprintln(stderr, "trajplot:", err)
		return 2
	}

	ctx := context.Background()
	failed := 0
	for _, path := range cfg.Inputs {
		res, err := adapter.Import(ctx, kind, core.FileSource(path, core.DefaultMaxSourceSize))
		if err != nil {
			failed++
			fmt.Fprintf(stderr, "%s: %s\n", filepath.Base(path), core.FormatUserError(err))
			continue
		}
		if !cfg.JSON {
			printResult(stdout, res)
		}
	}

	if cfg.JSON {
		out := struct {
			Metadata   core.MetadataSet   `json:"metadata"`
			Statistics core.Statistics    `json:"statistics"`
			Errors     []core.ImportError `json:"errors"`
		}{adapter.AllMetadata(), adapter.Statistics(), adapter.Errors()}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintln(stderr, "trajplot:", err)
			return 1
		}
	}

	if failed == len(cfg.Inputs) {
		return 1
	}

	project := func(p render.Plane) []render.Series {
		switch kind {
		case core.KindDeterministic:
			return render.Project(adapter.Deterministic(), p, "")
		case core.KindQuantiles:
			return render.Project(adapter.Quantiles(), p, "")
		default:
			return render.ProjectAll(adapter.MonteCarlo(), p)
		}
	}
	title := fmt.Sprintf("%s trajectory", kind)

	if cfg.PNG != "" {
		o := render.DefaultPlotOptions()
		o.Title = fmt.Sprintf("%s (%s)", title, plane)
		if err := writeFile(cfg.PNG, func(w io.Writer) error {
			return render.WritePNG(w, project(plane), plane, o)
		}); err != nil {
			fmt.Fprintln(stderr, "trajplot: png:", err)
			return 1
		}
	}
	if cfg.HTML != "" {
		if err := writeFile(cfg.HTML, func(w io.Writer) error {
			return render.WriteChartPage(w, project, render.ChartOptions{Title: title})
		}); err != nil {
			fmt.Fprintln(stderr, "trajplot: html:", err)
			return 1
		}
	}

	if failed > 0 {
		return 1
	}
	return 0
}

func printResult(w io.Writer, res *core.ImportResult) {
	tr := res.Trajectory
	md := tr.Metadata

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "source\t%s\n", tr.Source)
	fmt.Fprintf(tw, "type\t%s\n", tr.Kind)
	if res.SimulationIndex >= 0 {
		fmt.Fprintf(tw, "simulation\t%d\n", res.SimulationIndex)
	}
	fmt.Fprintf(tw, "points\t%d (skipped %d, truncated %v)\n", md.PointCount, md.SkippedRows, md.Truncated)
	fmt.Fprintf(tw, "time\t%g to %g (%g)\n", md.TimeRange.Min, md.TimeRange.Max, md.TimeRange.Duration)
	fmt.Fprintf(tw, "extent\tx %.4g  y %.4g  z %.4g  max %.4g\n",
		md.SpatialExtent.X.Span, md.SpatialExtent.Y.Span, md.SpatialExtent.Z.Span, md.SpatialExtent.MaxExtent)
	if len(md.Quantiles) > 0 {
		fmt.Fprintf(tw, "quantiles\t%v\n", md.Quantiles)
	}
	if res.Report != nil {
		fmt.Fprintf(tw, "physics\tvalid=%v issues=%d\n", res.Report.Valid, len(res.Report.Issues))
	}
	tw.Flush()

	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
	if res.Report != nil {
		for _, msg := range res.Report.Messages() {
			fmt.Fprintf(w, "  issue: %s\n", msg)
		}
	}
	fmt.Fprintln(w)
}

// writeFile creates path and hands it to write, removing it on failure.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
