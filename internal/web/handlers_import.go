package web

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/thibequation/trajectory/internal/core"
	"github.com/thibequation/trajectory/internal/logging"
)

// multipartOverhead is headroom over TRAJ_MAX_FILE_SIZE for form boundaries
// and part headers. The file part itself is held to the exact limit.
const multipartOverhead = 1 << 20

// multipartMemory is the part of a form kept in memory before spilling to disk.
const multipartMemory = 32 << 20

// uploadName labels a multipart body whose file part never arrived.
const uploadName = "upload"

// handleImport imports one trajectory file. The body is either a multipart
// form with a "file" part or the raw CSV text; ?name= labels a raw body.
// Unknown kinds and missing files go through the adapter so they land in
// its error log like any other failed import.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "kind")
	kind, err := core.ParseKind(raw)
	if err != nil {
		kind = core.Kind(raw)
	}

	if err := s.imports.Acquire(r.Context()); err != nil {
		if errors.Is(err, core.ErrTooManyImports) {
			w.Header().Set("Retry-After", "5")
		}
		s.respondError(w, r, err)
		return
	}
	defer s.imports.Release()

	src, cleanup := s.importSource(w, r)
	defer cleanup()

	var name string
	if src != nil {
		name = src.Name()
	}
	logging.FromContext(r.Context()).Info("import requested",
		"type", string(kind),
		"source", name,
	)

	result, err := s.adapter.Import(r.Context(), kind, src)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result)
}

// importSource builds the adapter source for r. The source is nil when the
// request carries no file, and fails on Read when the form could not be
// received. The returned cleanup releases multipart temp files.
func (s *Server) importSource(w http.ResponseWriter, r *http.Request) (core.Source, func()) {
	maxSize := int64(s.cfg.Import.MaxFileSize)
	noop := func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		// One byte past the limit lets the source report the size itself.
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+1)
		if r.ContentLength == 0 {
			return nil, noop
		}
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "request-body.csv"
		}
		return core.ReaderSource(name, r.Body, maxSize), noop
	}

	cleanup := func() {
		if r.MultipartForm != nil {
			r.MultipartForm.RemoveAll()
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return core.FailedSource(uploadName, &core.SourceTooLargeError{Source: uploadName, Limit: maxSize}), cleanup
		}
		return core.FailedSource(uploadName, &core.ReadError{Source: uploadName, Err: err}), cleanup
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		cleanup()
		return nil, noop
	}
	name := strings.TrimSpace(header.Filename)
	if name == "" {
		name = "upload.csv"
	}

	return core.ReaderSource(name, file, maxSize), func() {
		file.Close()
		cleanup()
	}
}
