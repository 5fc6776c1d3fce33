package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/roster-service/internal/http/middleware"
	"github.com/preston-bernstein/roster-service/internal/logging"
	"github.com/preston-bernstein/roster-service/internal/providers"
	"github.com/preston-bernstein/roster-service/internal/session"
	"github.com/preston-bernstein/roster-service/internal/snapshots"
)

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error(logger, "failed to encode response", err)
	}
}

// writeError writes {"error", "requestId"}; the request ID comes from the
// logging middleware, or the inbound header when the middleware did not run.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	reqID := middleware.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = r.Header.Get("X-Request-ID")
	}
	body := map[string]string{"error": message}
	if reqID != "" {
		body["requestId"] = reqID
	}
	writeJSON(w, status, body, logger)
}

// writeFailure maps a service error to its status. Unclassified errors are
// logged and answered with fallback so internals stay out of the body.
func writeFailure(w http.ResponseWriter, r *http.Request, err error, fallback string, logger *slog.Logger) {
	status, msg := classifyError(err)
	if status == http.StatusInternalServerError {
		logging.Error(loggerFromContext(r, logger), fallback, err, logging.FieldPath, r.URL.Path)
		msg = fallback
	}
	writeError(w, r, status, msg, logger)
}

func classifyError(err error) (int, string) {
	var loadErr *providers.LoadError
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, snapshots.ErrInvalidDate):
		return http.StatusBadRequest, "invalid date format (expected YYYY-MM-DD)"
	case errors.Is(err, snapshots.ErrNotFound):
		return http.StatusNotFound, "snapshot not found"
	case errors.As(err, &loadErr):
		return http.StatusBadGateway, loadErr.Error()
	default:
		return http.StatusInternalServerError, ""
	}
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}
