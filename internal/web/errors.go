package web

// errors.go renders pipeline errors for API clients.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via core.MapError to get the user-facing message
//  4. Technical error + code is logged with the request ID for correlation
//  5. The status is derived from the error type and the JSON body is written

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/thibequation/trajectory/internal/core"
	"github.com/thibequation/trajectory/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes its user-facing JSON form.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userMsg := core.MapError(err)
	status := statusFor(err)

	logging.FromContext(r.Context()).Warn("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   err.Error(),
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var (
		empty    *core.EmptyInputError
		schema   *core.SchemaError
		quantile *core.QuantileStructureError
		physics  *core.PhysicsError
		kind     *core.UnsupportedKindError
		tooLarge *core.SourceTooLargeError
		maxBytes *http.MaxBytesError
		read     *core.ReadError
	)
	switch {
	case errors.As(err, &empty), errors.As(err, &schema),
		errors.As(err, &quantile), errors.As(err, &physics):
		return http.StatusUnprocessableEntity
	case errors.As(err, &tooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &kind), errors.Is(err, core.ErrNoSource), errors.As(err, &read):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}
