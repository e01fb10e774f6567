package web

// errors.go provides unified error response handling for the web layer.
//
// Every error is logged with its technical details and the request id, then
// returned to the client as the user-facing message from core.MapError.

import (
	"context"
	"errors"
	"net/http"

	"github.com/JonMunkholm/tcgmatch/internal/core"
	"github.com/JonMunkholm/tcgmatch/internal/logging"
)

// errNoFile is returned when a multipart request has no "file" part.
var errNoFile = errors.New("no file provided")

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error server-side and writes the mapped
// user message. A zero status is derived from the error.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = statusFor(err)
	}
	userMsg := core.MapError(err)

	log := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		log.Error("request error", args...)
	} else {
		log.Warn("request error", args...)
	}

	if errors.Is(err, core.ErrTooManyConversions) {
		w.Header().Set("Retry-After", "5")
	}

	writeJSON(w, status, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusFor maps conversion errors to HTTP status codes.
func statusFor(err error) int {
	var sysErr *core.SystemError
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrInputTooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case core.IsInputError(err), errors.Is(err, errNoFile):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrResultNotFound), errors.Is(err, core.ErrNoFailureExport):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyConversions):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &sysErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
