// Package logging configures the process-wide structured logger and ties
// log entries to their originating HTTP request.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// Setup configures the global slog logger.
//
// Level values: "debug", "info", "warn", "error" (default: "info").
// Format values: "text", "json" (default: "text"). Production deployments
// run "json" so log shippers can parse entries.
func Setup(level, format string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FromContext returns a logger enriched with request context. When the
// context carries a chi RequestID, every entry from the returned logger
// includes request_id, so all log lines of one request correlate.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}
	return logger
}

// ForUpload returns a request logger that also carries the upload identity.
// Handlers processing one file through validation, enrichment, and delivery
// use it so the whole pipeline logs under the same keys.
func ForUpload(ctx context.Context, fileName, sessionID string) *slog.Logger {
	logger := FromContext(ctx).With("file_name", fileName)
	if sessionID != "" {
		logger = logger.With("session_id", sessionID)
	}
	return logger
}
