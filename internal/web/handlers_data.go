package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/thibequation/trajectory/internal/core"
	"github.com/thibequation/trajectory/internal/logging"
)

// handleDeterministic returns the stored RK4 run.
func (s *Server) handleDeterministic(w http.ResponseWriter, r *http.Request) {
	writeTrajectory(w, s.adapter.Deterministic(), core.KindDeterministic)
}

// handleQuantiles returns the stored quantile envelope.
func (s *Server) handleQuantiles(w http.ResponseWriter, r *http.Request) {
	writeTrajectory(w, s.adapter.Quantiles(), core.KindQuantiles)
}

// handleMonteCarlo returns every stored simulation run.
func (s *Server) handleMonteCarlo(w http.ResponseWriter, r *http.Request) {
	runs := s.adapter.MonteCarlo()
	if runs == nil {
		runs = []*core.Trajectory{}
	}
	writeJSON(w, runs)
}

// handleMonteCarloAt returns one simulation run by its 0-based index.
func (s *Server) handleMonteCarloAt(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	tr, ok := s.adapter.MonteCarloAt(index)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no monte-carlo simulation at index %d", index))
		return
	}
	writeJSON(w, tr)
}

func writeTrajectory(w http.ResponseWriter, tr *core.Trajectory, kind core.Kind) {
	if tr == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no %s trajectory loaded", kind))
		return
	}
	writeJSON(w, tr)
}

// handleAllMetadata returns the metadata of every stored sequence.
func (s *Server) handleAllMetadata(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.adapter.AllMetadata())
}

// handleMetadata returns the metadata of one kind; for monte-carlo that is
// the latest run.
func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	md := s.adapter.Metadata(kind)
	if md == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no %s trajectory loaded", kind))
		return
	}
	writeJSON(w, md)
}

// handleHealth reports liveness with import slot and stream usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":       "ok",
		"imports":      s.imports.Status(),
		"eventClients": s.hub.clientCount(),
	})
}

// handleStatistics returns the aggregate summary.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.adapter.Statistics())
}

// handleErrors returns the failed imports since the last reset.
func (s *Server) handleErrors(w http.ResponseWriter, r *http.Request) {
	errs := s.adapter.Errors()
	if errs == nil {
		errs = []core.ImportError{}
	}
	writeJSON(w, errs)
}

// handleReset discards all stored sequences.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.adapter.Reset()
	logging.FromContext(r.Context()).Info("adapter reset via API")
	writeJSON(w, map[string]string{"status": "reset"})
}
