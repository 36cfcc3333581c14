package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/thibequation/trajectory/internal/core"
	"github.com/thibequation/trajectory/internal/render"
)

// viewAll overlays every stored sequence in one chart or plot.
const viewAll = "all"

// projector returns the projection of the stored sequences selected by
// view: a kind name or "all".
func (s *Server) projector(view string) (func(render.Plane) []render.Series, string, error) {
	if view == viewAll {
		return func(p render.Plane) []render.Series {
			var out []render.Series
			out = append(out, render.Project(s.adapter.Deterministic(), p, "deterministic")...)
			out = append(out, render.Project(s.adapter.Quantiles(), p, "quantiles")...)
			return append(out, render.ProjectAll(s.adapter.MonteCarlo(), p)...)
		}, "All trajectories", nil
	}

	kind, err := core.ParseKind(view)
	if err != nil {
		return nil, "", err
	}
	switch kind {
	case core.KindDeterministic:
		tr := s.adapter.Deterministic()
		return func(p render.Plane) []render.Series {
			return render.Project(tr, p, "deterministic")
		}, "Deterministic trajectory", nil
	case core.KindQuantiles:
		tr := s.adapter.Quantiles()
		return func(p render.Plane) []render.Series {
			return render.Project(tr, p, "quantiles")
		}, "Quantile envelope", nil
	default:
		runs := s.adapter.MonteCarlo()
		return func(p render.Plane) []render.Series {
			return render.ProjectAll(runs, p)
		}, fmt.Sprintf("Monte-Carlo simulations (%d)", len(runs)), nil
	}
}

// handleChart renders an interactive chart page with the three projections.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	project, title, err := s.projector(chi.URLParam(r, "kind"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	err = render.WriteChartPage(&buf, project, render.ChartOptions{Title: title})
	if errors.Is(err, render.ErrNoData) {
		writeError(w, http.StatusNotFound, "no trajectory data to chart")
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handlePlot renders a static PNG of one projection, chosen by ?plane=.
func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	view := strings.TrimSuffix(chi.URLParam(r, "kind"), ".png")
	project, title, err := s.projector(view)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	plane, err := render.ParsePlane(r.URL.Query().Get("plane"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := render.DefaultPlotOptions()
	opts.Title = fmt.Sprintf("%s (%s)", title, plane)

	var buf bytes.Buffer
	err = render.WritePNG(&buf, project(plane), plane, opts)
	if errors.Is(err, render.ErrNoData) {
		writeError(w, http.StatusNotFound, "no trajectory data to plot")
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}
