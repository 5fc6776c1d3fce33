package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/roster-service/internal/logging"
	"github.com/preston-bernstein/roster-service/internal/metrics"
	"github.com/preston-bernstein/roster-service/internal/session"
	"github.com/preston-bernstein/roster-service/internal/testutil"
)

type stubAuth struct {
	sessions map[string]session.Session
	err      error
}

func (s stubAuth) Authenticate(ctx context.Context, token string) (session.Session, error) {
	_ = ctx
	if s.err != nil {
		return session.Session{}, s.err
	}
	sess, ok := s.sessions[token]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	return sess, nil
}

func TestLoggingMiddlewareSetsRequestID(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	rec := metrics.NewRecorder()
	nextCalled := false

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		if got := RequestIDFromContext(r.Context()); got != "incoming-1" {
			t.Fatalf("expected request id in context, got %q", got)
		}
		w.WriteHeader(http.StatusTeapot)
	})

	handler := Logging(logger, rec)(next)
	req := httptest.NewRequest(http.MethodGet, "/roster", nil)
	req.Header.Set("X-Request-ID", "incoming-1")
	rr := testutil.ServeRequest(handler, req)

	if !nextCalled {
		t.Fatalf("expected next handler to be called")
	}
	testutil.AssertStatus(t, rr, http.StatusTeapot)
	if got := rr.Header().Get("X-Request-ID"); got != "incoming-1" {
		t.Fatalf("expected request id echoed, got %q", got)
	}
	if !strings.Contains(buf.String(), "status_code=418") {
		t.Fatalf("expected completion log with status, got %s", buf.String())
	}
}

func TestLoggingMiddlewareGeneratesRequestIDWhenMissing(t *testing.T) {
	logger, _ := testutil.NewBufferLogger()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := RequestIDFromContext(r.Context()); got == "" {
			t.Fatalf("expected generated request id")
		}
		if logging.FromContext(r.Context(), nil) == nil {
			t.Fatalf("expected request logger in context")
		}
		w.WriteHeader(http.StatusOK)
	})

	handler := Logging(logger, nil)(next)
	req := httptest.NewRequest(http.MethodGet, "/roster?search=x", nil)
	req.Header.Set("X-Request-ID", "bad id")
	rr := testutil.ServeRequest(handler, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	if got := rr.Header().Get("X-Request-ID"); got == "" || got == "bad id" {
		t.Fatalf("expected sanitized X-Request-ID header, got %q", got)
	}
}

func TestLoggingMiddlewareNilLoggerUsesDefault(t *testing.T) {
	handler := Logging(nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := testutil.Serve(handler, http.MethodGet, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestRequireSessionRejectsMissingToken(t *testing.T) {
	handler := RequireSession(stubAuth{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run without a session")
	}))

	rr := testutil.Serve(handler, http.MethodGet, "/roster", nil)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	var body map[string]string
	testutil.DecodeJSON(t, rr, &body)
	if body["error"] != "authentication required" {
		t.Fatalf("unexpected error %q", body["error"])
	}
	if rr.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Fatalf("expected WWW-Authenticate header")
	}
}

func TestRequireSessionRejectsUnknownToken(t *testing.T) {
	for _, auth := range []stubAuth{{}, {err: errors.New("redis down")}} {
		handler := RequireSession(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatalf("handler must not run without a session")
		}))
		rr := testutil.ServeAuthorized(t, handler, http.MethodGet, "/roster", "nope", nil)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	}
}

func TestRequireSessionStoresSession(t *testing.T) {
	auth := stubAuth{sessions: map[string]session.Session{
		"tok": {Token: "tok", Username: "admin", Role: "Administrateur"},
	}}
	logger, buf := testutil.NewBufferLogger()

	handler := Logging(logger, nil)(RequireSession(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := session.FromContext(r.Context())
		if !ok || s.Username != "admin" {
			t.Fatalf("expected session in context, got %+v", s)
		}
		logging.Info(logging.FromContext(r.Context(), nil), "inside")
		w.WriteHeader(http.StatusNoContent)
	})))

	rr := testutil.ServeAuthorized(t, handler, http.MethodGet, "/roster", "tok", nil)
	testutil.AssertStatus(t, rr, http.StatusNoContent)
	if !strings.Contains(buf.String(), "user=admin") {
		t.Fatalf("expected user on request logger, got %s", buf.String())
	}
}

func TestRoutePatternUsesChiPattern(t *testing.T) {
	var seen string
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req)
			seen = routePattern(req)
		})
	})
	r.Post("/roster/teams/{key}/toggle", func(w http.ResponseWriter, req *http.Request) {})

	testutil.Serve(r, http.MethodPost, "/roster/teams/L1-TA/toggle", nil)
	if seen != "/roster/teams/{key}/toggle" {
		t.Fatalf("expected chi route pattern, got %q", seen)
	}
}

func TestResponseWriterRecordsStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	w := &responseWriter{ResponseWriter: rr}
	if w.status != 0 {
		t.Fatalf("expected zero status before write, got %d", w.status)
	}
	w.WriteHeader(http.StatusAccepted)
	if w.status != http.StatusAccepted {
		t.Fatalf("expected status set to 202, got %d", w.status)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "/roster", want: "/roster"},
		{in: "/roster/divisions/L1/toggle", want: "/roster/divisions/{key}/toggle"},
		{in: "/roster/teams/L1-TA/toggle", want: "/roster/teams/{key}/toggle"},
		{in: "/snapshots/2024-06-14", want: "/snapshots/{date}"},
		{in: "/health", want: "/health"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.in); got != tt.want {
			t.Fatalf("normalizePath(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestRequestIDHelpers(t *testing.T) {
	ctx := context.Background()
	if got := RequestIDFromContext(ctx); got != "" {
		t.Fatalf("expected empty id, got %s", got)
	}

	ctx = withRequestID(ctx, "abc123")
	if got := RequestIDFromContext(ctx); got != "abc123" {
		t.Fatalf("expected id from context, got %s", got)
	}
}

func BenchmarkLoggingMiddleware(b *testing.B) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	rec := metrics.NewRecorder()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := Logging(logger, rec)(next)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/roster", nil)
		handler.ServeHTTP(rr, req)
	}
}
