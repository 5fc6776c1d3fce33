package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	approster "github.com/preston-bernstein/roster-service/internal/app/roster"
	domainroster "github.com/preston-bernstein/roster-service/internal/domain/roster"
	"github.com/preston-bernstein/roster-service/internal/logging"
	"github.com/preston-bernstein/roster-service/internal/poller"
	engine "github.com/preston-bernstein/roster-service/internal/roster"
	"github.com/preston-bernstein/roster-service/internal/session"
)

const maxBodyBytes = 1 << 20

// RosterService is the roster behaviour the HTTP layer exposes.
type RosterService interface {
	Refresh(ctx context.Context) error
	View(sessionID string, c engine.Criteria) approster.Result
	Facets() engine.Facets
	Expansion(sessionID string) engine.Expansion
	ToggleDivision(sessionID, division string) engine.Expansion
	ToggleTeam(sessionID, teamKey string) engine.Expansion
	EndSession(sessionID string)
	Status() approster.Status
}

// Authenticator issues and revokes sessions.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (session.Session, error)
	Logout(ctx context.Context, token string) error
}

// SnapshotStore reads the archive of past loads.
type SnapshotStore interface {
	LoadRoster(date string) (domainroster.Snapshot, error)
	Dates() ([]string, error)
}

// Handler wires HTTP routes to the roster service.
type Handler struct {
	svc      RosterService
	auth     Authenticator
	snaps    SnapshotStore
	logger   *slog.Logger
	statusFn func() poller.Status
}

// NewHandler constructs a Handler. snaps may be nil when archiving is disabled,
// statusFn when nothing refreshes in the background.
func NewHandler(svc RosterService, auth Authenticator, snaps SnapshotStore, logger *slog.Logger, statusFn func() poller.Status) *Handler {
	return &Handler{
		svc:      svc,
		auth:     auth,
		snaps:    snaps,
		logger:   logger,
		statusFn: statusFn,
	}
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

type refreshStatus struct {
	Healthy             bool       `json:"healthy"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
	LastAttempt         *time.Time `json:"lastAttempt,omitempty"`
	LastSuccess         *time.Time `json:"lastSuccess,omitempty"`
	LastError           string     `json:"lastError,omitempty"`
}

func newRefreshStatus(st poller.Status) refreshStatus {
	rs := refreshStatus{
		Healthy:             st.IsReady(),
		ConsecutiveFailures: st.ConsecutiveFailures,
		LastError:           st.LastError,
	}
	if !st.LastAttempt.IsZero() {
		rs.LastAttempt = &st.LastAttempt
	}
	if !st.LastSuccess.IsZero() {
		rs.LastSuccess = &st.LastSuccess
	}
	return rs
}

// Ready reports whether a roster is loaded and the last load succeeded, along
// with the background refresh health when a poller runs.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	status := h.svc.Status()
	if !status.Ready() {
		msg := status.LastError
		if msg == "" {
			msg = "roster not loaded"
		}
		writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
		return
	}

	body := map[string]any{"status": "ready", "records": status.Records}
	if h.statusFn != nil {
		body["refresh"] = newRefreshStatus(h.statusFn())
	}
	writeJSON(w, http.StatusOK, body, h.logger)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	s, err := h.auth.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		writeFailure(w, r, err, "login unavailable", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, s, h.logger)
}

// Logout revokes the caller's session and drops its view state.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.auth.Logout(r.Context(), s.Token); err != nil {
		writeFailure(w, r, err, "logout failed", h.logger)
		return
	}
	h.svc.EndSession(s.Token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"}, h.logger)
}

// Roster runs the query engine with the filters in the query string.
func (h *Handler) Roster(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	league := q.Get("league")
	if league == "" {
		league = q.Get("division")
	}
	result := h.svc.View(s.Token, engine.Criteria{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		RoleType: q.Get("type"),
		Division: league,
	})
	logging.Debug(loggerFromContext(r, h.logger), "served roster view", logging.FieldCount, result.Count)
	writeJSON(w, http.StatusOK, result, h.logger)
}

// Facets returns the filter options.
func (h *Handler) Facets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Facets(), h.logger)
}

// Expansion returns the caller's open nodes.
func (h *Handler) Expansion(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Expansion(s.Token), h.logger)
}

// ToggleDivision flips a division node for the caller.
func (h *Handler) ToggleDivision(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	key, ok := h.pathKey(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ToggleDivision(s.Token, key), h.logger)
}

// ToggleTeam flips a team node for the caller.
func (h *Handler) ToggleTeam(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	key, ok := h.pathKey(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ToggleTeam(s.Token, key), h.logger)
}

// Refresh reloads the roster now.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Refresh(r.Context()); err != nil {
		writeFailure(w, r, err, "refresh failed", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Status(), h.logger)
}

// SnapshotDates lists the archived dates.
func (h *Handler) SnapshotDates(w http.ResponseWriter, r *http.Request) {
	if h.snaps == nil {
		writeError(w, r, http.StatusServiceUnavailable, "snapshot archive not configured", h.logger)
		return
	}
	dates, err := h.snaps.Dates()
	if err != nil {
		writeFailure(w, r, err, "snapshot archive unavailable", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dates": dates}, h.logger)
}

// Snapshot returns the roster archived for a date.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	if h.snaps == nil {
		writeError(w, r, http.StatusServiceUnavailable, "snapshot archive not configured", h.logger)
		return
	}
	date := chi.URLParam(r, "date")
	snap, err := h.snaps.LoadRoster(date)
	if err != nil {
		writeFailure(w, r, err, "snapshot archive unavailable", h.logger)
		return
	}
	logging.Info(loggerFromContext(r, h.logger), "served snapshot roster", logging.FieldDate, date, logging.FieldCount, snap.Len())
	writeJSON(w, http.StatusOK, snap, h.logger)
}

// NotFound is the JSON fallback for unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "not found", h.logger)
}

// MethodNotAllowed is the JSON fallback for known routes hit with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", h.logger)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required", h.logger)
	}
	return s, ok
}

func (h *Handler) pathKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "key")
	key, err := url.PathUnescape(raw)
	if err != nil {
		key = raw
	}
	if strings.TrimSpace(key) == "" {
		writeError(w, r, http.StatusBadRequest, "node key required", h.logger)
		return "", false
	}
	return key, true
}
