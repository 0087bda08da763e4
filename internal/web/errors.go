package web

// errors.go provides unified error responses for the API.
//
// Every error is logged with full technical detail under the request id,
// while the client receives a sanitized message mapped from the error
// class. Internal detail never leaves the process.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/qhuube/vatreport/internal/core"
	"github.com/qhuube/vatreport/internal/logging"
	"github.com/qhuube/vatreport/internal/session"
)

var errRateLimited = errors.New("rate limit exceeded")

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError maps an error to a status code and a client-safe message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrUnsupportedFormat),
		errors.Is(err, core.ErrNoHeader):
		status = http.StatusBadRequest
	case errors.Is(err, errRateLimited):
		status = http.StatusTooManyRequests
	}
	writeError(w, r, status, err)
}

// writeError writes a JSON error response with a sanitized message.
func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err,
	)
	writeJSON(w, status, ErrorResponse{Error: clientMessage(status, err)})
}

// clientMessage hides server internals behind generic messages for 5xx
// responses; 4xx errors describe a problem the caller can fix and pass
// through.
func clientMessage(status int, err error) string {
	if status >= http.StatusInternalServerError {
		return "Internal server error"
	}
	return err.Error()
}

// writeJSON encodes v and writes it with the given status. Encoding errors
// are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone, nothing to send the client.
		slog.Error("json encode error", "error", err)
	}
}
