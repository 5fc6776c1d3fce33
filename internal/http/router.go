package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/preston-bernstein/roster-service/internal/http/handlers"
	"github.com/preston-bernstein/roster-service/internal/http/middleware"
	"github.com/preston-bernstein/roster-service/internal/metrics"
)

// RouterConfig carries what the router needs beyond the handler itself.
type RouterConfig struct {
	Auth        middleware.Authenticator
	Logger      *slog.Logger
	Recorder    *metrics.Recorder
	CORSOrigins []string
}

// NewRouter registers the HTTP routes. Everything except health, readiness and
// login sits behind a session.
func NewRouter(handler *handlers.Handler, cfg RouterConfig) nethttp.Handler {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Logging(cfg.Logger, cfg.Recorder))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get("/health", handler.Health)
	r.Get("/ready", handler.Ready)
	r.Post("/auth/login", handler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(cfg.Auth))

		r.Post("/auth/logout", handler.Logout)
		r.Get("/roster", handler.Roster)
		r.Get("/roster/facets", handler.Facets)
		r.Get("/roster/expansion", handler.Expansion)
		r.Post("/roster/divisions/{key}/toggle", handler.ToggleDivision)
		r.Post("/roster/teams/{key}/toggle", handler.ToggleTeam)
		r.Post("/roster/refresh", handler.Refresh)
		r.Get("/snapshots", handler.SnapshotDates)
		r.Get("/snapshots/{date}", handler.Snapshot)
	})
	return r
}
