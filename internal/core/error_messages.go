package core

// # Error Codes Reference
//
// This file maps pipeline errors to user-facing messages with a code for
// support reference. Users quote the code; support staff look it up here.
//
// # Trajectory Errors (TRJ001-TRJ099)
//
// The file was read but cannot become a trajectory:
//
//	TRJ001 - Empty file: The file contains no CSV lines
//	         Action: Export the trajectory again and upload the CSV with data
//	         Type: *EmptyInputError   Patterns: "empty file"
//
//	TRJ002 - Missing fields: Required columns are missing from the header
//	         Action: Check the header row against the trajectory type
//	         Type: *SchemaError       Patterns: "missing required fields"
//
//	TRJ003 - No quantiles: No <dim>_q<NN> columns were found
//	         Action: Name quantile columns like x_q05, x_q50, x_q95
//	         Type: *QuantileStructureError   Patterns: "no quantile columns"
//
//	TRJ004 - Unsupported type: The trajectory type is unknown or disabled
//	         Action: Use deterministic, quantiles or monte-carlo
//	         Type: *UnsupportedKindError     Patterns: "unsupported trajectory type"
//
//	TRJ005 - Physics check failed: The data is not physically consistent
//	         Action: Review the validation issues or disable strict mode
//	         Type: *PhysicsError     Patterns: "physical validation failed"
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Read failure: The file could not be read
//	         Action: Check the file and try again
//	         Type: *ReadError
//
//	SRC002 - File too large: The file exceeds the size limit
//	         Action: Reduce the number of rows or raise TRAJ_MAX_FILE_SIZE
//	         Type: *SourceTooLargeError   Patterns: "file too large"
//
//	SRC003 - No file: No file was provided
//	         Action: Select a CSV file to upload
//	         Value: ErrNoSource           Patterns: "no file provided"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled
//	         Patterns: context.Canceled, "context canceled"
//
//	REQ002 - Request timeout
//	         Patterns: context.DeadlineExceeded, "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//
//	RATE002 - Too many imports: Every import slot is busy
//	          Value: ErrTooManyImports   Patterns: "too many concurrent imports"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Check the application logs for the technical error.
//
// # Matching
//
// Typed errors are matched first with errors.As / errors.Is, so wrapped
// errors keep their code. Otherwise patterns are matched case-insensitively
// with strings.Contains; the first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

var (
	msgEmpty = UserMessage{
		Message: "The file contains no CSV lines",
		Action:  "Export the trajectory again and upload the CSV with data",
		Code:    "TRJ001",
	}
	msgSchema = UserMessage{
		Message: "Required columns are missing from the header",
		Action:  "Check the header row against the trajectory type",
		Code:    "TRJ002",
	}
	msgQuantiles = UserMessage{
		Message: "No quantile columns were found",
		Action:  "Name quantile columns like x_q05, x_q50, x_q95",
		Code:    "TRJ003",
	}
	msgKind = UserMessage{
		Message: "The trajectory type is unknown or disabled",
		Action:  "Use deterministic, quantiles or monte-carlo",
		Code:    "TRJ004",
	}
	msgPhysics = UserMessage{
		Message: "The data is not physically consistent",
		Action:  "Review the validation issues or disable strict mode",
		Code:    "TRJ005",
	}
	msgRead = UserMessage{
		Message: "The file could not be read",
		Action:  "Check the file and try again",
		Code:    "SRC001",
	}
	msgTooLarge = UserMessage{
		Message: "The file exceeds the size limit",
		Action:  "Reduce the number of rows or raise TRAJ_MAX_FILE_SIZE",
		Code:    "SRC002",
	}
	msgNoSource = UserMessage{
		Message: "No file was provided",
		Action:  "Select a CSV file to upload",
		Code:    "SRC003",
	}
	msgCanceled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ001",
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "REQ002",
	}
	msgRateLimit = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
	msgBusy = UserMessage{
		Message: "Too many imports are in progress",
		Action:  "Wait for running imports to finish and try again",
		Code:    "RATE002",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is consulted when no typed error matched. Order matters:
// specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{"empty file", msgEmpty},
	{"missing required fields", msgSchema},
	{"no quantile columns", msgQuantiles},
	{"unsupported trajectory type", msgKind},
	{"physical validation failed", msgPhysics},
	{"file too large", msgTooLarge},
	{"request body too large", msgTooLarge},
	{"no file provided", msgNoSource},
	{"context canceled", msgCanceled},
	{"context deadline exceeded", msgTimeout},
	{"timeout", msgTimeout},
	{"rate limit", msgRateLimit},
	{"too many concurrent imports", msgBusy},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A nil error maps to the zero UserMessage.
//
// Example:
//
//	_, err := adapter.ImportDeterministic(ctx, src)
//	msg := MapError(err)
//	// msg.Code == "TRJ002" for a header without vx, vy, vz
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		empty    *EmptyInputError
		schema   *SchemaError
		quantile *QuantileStructureError
		kind     *UnsupportedKindError
		physics  *PhysicsError
		tooLarge *SourceTooLargeError
		read     *ReadError
	)
	switch {
	case errors.As(err, &empty):
		return msgEmpty
	case errors.As(err, &schema):
		return msgSchema
	case errors.As(err, &quantile):
		return msgQuantiles
	case errors.As(err, &kind):
		return msgKind
	case errors.As(err, &physics):
		return msgPhysics
	case errors.As(err, &tooLarge):
		return msgTooLarge
	case errors.Is(err, ErrNoSource):
		return msgNoSource
	case errors.Is(err, ErrTooManyImports):
		return msgBusy
	case errors.Is(err, context.Canceled):
		return msgCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	case errors.As(err, &read):
		return msgRead
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
