package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/thibequation/trajectory/internal/core"
)

//go:generate templ generate

// dashboardData is what the dashboard page shows.
type dashboardData struct {
	Stats  core.Statistics
	Meta   core.MetadataSet
	Errors []core.ImportError
	Kinds  []core.Kind
}

// handleDashboard renders the overview page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{
		Stats:  s.adapter.Statistics(),
		Meta:   s.adapter.AllMetadata(),
		Errors: s.adapter.Errors(),
		Kinds:  s.adapter.Options().SupportedTypes,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardPage(data).Render(r.Context(), w); err != nil {
		s.logger.Error("render dashboard", "error", err)
	}
}

// viewURL fills a per-kind route pattern.
func viewURL(pattern string, kind core.Kind) templ.SafeURL {
	return templ.URL(fmt.Sprintf(pattern, url.PathEscape(string(kind))))
}

func kindList(kinds []core.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
