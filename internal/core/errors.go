package core

// errors.go defines the typed errors of the import pipeline.
//
// Fatal errors abort an import and leave adapter state unchanged:
//   - EmptyInputError: no non-empty lines
//   - SchemaError: required headers missing for the kind
//   - QuantileStructureError: no <dim>_q<NN> headers on a quantile import
//   - UnsupportedKindError: kind unknown or disabled by configuration
//   - PhysicsError: validation failed and StrictPhysics is set
//   - ReadError / SourceTooLargeError: the source could not be read
//
// Row-level problems and physics findings are not errors; they are carried
// by ParseResult and ValidationReport.

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSource is returned when an import is given a nil Source.
var ErrNoSource = errors.New("no file provided")

// EmptyInputError reports a CSV with no non-empty lines.
type EmptyInputError struct {
	Source string
}

func (e *EmptyInputError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("empty file: %s has no CSV lines", e.Source)
	}
	return "empty file: no CSV lines"
}

// SchemaError lists the required fields absent from the header row.
type SchemaError struct {
	Kind    Kind
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required fields for %s: %s", e.Kind, strings.Join(e.Missing, ", "))
}

// QuantileStructureError reports a quantile import without quantile columns.
type QuantileStructureError struct {
	Headers []string
}

func (e *QuantileStructureError) Error() string {
	return "no quantile columns detected in headers (expected format: x_q05, x_q50, ...)"
}

// UnsupportedKindError reports an unknown or disabled trajectory kind.
type UnsupportedKindError struct {
	Kind Kind
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported trajectory type: %q", string(e.Kind))
}

// PhysicsError is returned when physical validation is blocking and fails.
type PhysicsError struct {
	Kind   Kind
	Report ValidationReport
}

func (e *PhysicsError) Error() string {
	return fmt.Sprintf("physical validation failed for %s: %d issues", e.Kind, len(e.Report.Issues))
}

// ReadError wraps an I/O failure while reading a source.
type ReadError struct {
	Source string
	Err    error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Source, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// SourceTooLargeError reports a source larger than the configured limit.
type SourceTooLargeError struct {
	Source string
	Limit  int64
}

func (e *SourceTooLargeError) Error() string {
	return fmt.Sprintf("file too large: %s exceeds %d bytes", e.Source, e.Limit)
}

// IsFatal reports whether err is one of the pipeline's import-aborting errors.
func IsFatal(err error) bool {
	var (
		empty    *EmptyInputError
		schema   *SchemaError
		quantile *QuantileStructureError
		kind     *UnsupportedKindError
		physics  *PhysicsError
	)
	return errors.As(err, &empty) ||
		errors.As(err, &schema) ||
		errors.As(err, &quantile) ||
		errors.As(err, &kind) ||
		errors.As(err, &physics)
}
