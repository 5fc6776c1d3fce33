package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	approster "github.com/preston-bernstein/roster-service/internal/app/roster"
	"github.com/preston-bernstein/roster-service/internal/config"
	httpserver "github.com/preston-bernstein/roster-service/internal/http"
	"github.com/preston-bernstein/roster-service/internal/http/handlers"
	"github.com/preston-bernstein/roster-service/internal/logging"
	"github.com/preston-bernstein/roster-service/internal/metrics"
	"github.com/preston-bernstein/roster-service/internal/providers"
	"github.com/preston-bernstein/roster-service/internal/session"
	"github.com/preston-bernstein/roster-service/internal/store"
	"github.com/preston-bernstein/roster-service/internal/timeutil"
)

var (
	metricsSetup = metrics.Setup
	redisConnect = session.NewRedisClient
)

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	store         *store.MemoryStore
	rosterService *approster.Service
	auth          *session.Authenticator
	httpServer    httpServer
	metricsServer httpServer
	poller        Poller
	metricsStop   func(context.Context) error
	sessionsClose func() error
	limiter       providers.Closer
}

// New constructs a server with the configured roster source, session store and poller.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServerWithProvider(cfg, logger, nil)
}

func newServerWithProvider(cfg config.Config, logger *slog.Logger, provider providers.RosterProvider) (*Server, error) {
	return newServerWithMetrics(cfg, logger, provider, nil)
}

func newServerWithMetrics(cfg config.Config, logger *slog.Logger, provider providers.RosterProvider, recorder *metrics.Recorder) (*Server, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	sourceName := normalizeProviderName(cfg.Source.Kind, provider)
	var limiter providers.Closer
	if provider == nil {
		provider, limiter = newProviderFactory(logger, recorder).build(cfg)
	} else {
		provider = providers.NewRetryingProvider(provider, logger, recorder, sourceName, 0, 0)
	}

	sessions, sessionsClose, err := buildSessionStore(context.Background(), cfg.Auth, logger)
	if err != nil {
		stopMetrics(metricsShutdown, logger)
		return nil, err
	}

	snaps := buildSnapshots(cfg, logger)
	memoryStore := store.NewMemoryStore()
	opts := approster.Options{
		Source:   sourceName,
		Locale:   cfg.DisplayLocale,
		Location: timeutil.ResolveLocation(cfg.DisplayTimezone),
		Logger:   logger,
		Recorder: recorder,
	}
	if snaps.writer != nil {
		opts.Archive = snaps.writer
	}
	rosterSvc := approster.NewService(provider, memoryStore, opts)

	auth, err := session.NewAuthenticator(cfg.Auth.Users, sessions, session.AuthOptions{
		TTL:      cfg.Auth.SessionTTL,
		Logger:   logger,
		Recorder: recorder,
		OnExpire: rosterSvc.EndSession,
	})
	if err != nil {
		stopMetrics(metricsShutdown, logger)
		if sessionsClose != nil {
			_ = sessionsClose()
		}
		return nil, fmt.Errorf("build authenticator: %w", err)
	}
	if auth.Accounts() == 0 {
		logger.Warn("no login accounts enabled; set AUTH_DEFAULT_PASSWORD or AUTH_USERS")
	}

	plr := buildPoller(rosterSvc, logger, cfg.RefreshInterval)
	httpSrv := buildHTTPServer(cfg, rosterSvc, auth, snaps, plr, logger, recorder)

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		store:         memoryStore,
		rosterService: rosterSvc,
		auth:          auth,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		poller:        plr,
		metricsStop:   metricsShutdown,
		sessionsClose: sessionsClose,
		limiter:       limiter,
	}, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, svc *approster.Service, httpSrv httpServer, plr Poller) *Server {
	return &Server{
		cfg:           cfg,
		logger:        logger,
		rosterService: svc,
		httpServer:    httpSrv,
		poller:        plr,
	}
}

func buildSessionStore(ctx context.Context, cfg config.AuthConfig, logger *slog.Logger) (session.Store, func() error, error) {
	switch strings.ToLower(cfg.SessionStore) {
	case config.SessionStoreRedis:
		client, err := redisConnect(ctx, session.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("session store: %w", err)
		}
		logging.Info(logger, "session store ready", "store", config.SessionStoreRedis, "addr", cfg.RedisAddr)
		st := session.NewRedisStore(client, nil)
		return st, st.Close, nil
	case config.SessionStoreMemory, "":
	default:
		logging.Warn(logger, "unknown session store, falling back to memory", "store", cfg.SessionStore)
	}
	return session.NewMemoryStore(nil), nil, nil
}

func buildHTTPServer(cfg config.Config, svc *approster.Service, auth *session.Authenticator, snaps snapshotComponents, plr Poller, logger *slog.Logger, recorder *metrics.Recorder) httpServer {
	var archive handlers.SnapshotStore
	if snaps.store != nil {
		archive = snaps.store
	}
	handler := handlers.NewHandler(svc, auth, archive, logger, plr.Status)
	router := httpserver.NewRouter(handler, httpserver.RouterConfig{
		Auth:        auth,
		Logger:      logger,
		Recorder:    recorder,
		CORSOrigins: cfg.CORSOrigins,
	})

	return newNetHTTPServer(cfg.Port, router)
}

// Run starts the poller and HTTP server, then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	s.poller.Start(ctx)

	<-ctx.Done()
	if s.logger != nil {
		s.logger.Info("shutdown signal received")
	}

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	if s.logger != nil {
		s.logger.Info("http server starting", slog.String("addr", s.httpServer.Addr()))
	}
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	if s.logger != nil {
		s.logger.Info("metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics server shutdown failed", "error", err)
		}
	}

	// Release refreshes parked on the rate limiter before waiting on the poller.
	if s.limiter != nil {
		s.limiter.Close()
	}

	if err := s.poller.Stop(shutdownCtx); err != nil && s.logger != nil {
		s.logger.Error("failed to stop poller", "error", err)
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
		s.logger.Error("graceful shutdown failed", "error", err)
	}

	if s.sessionsClose != nil {
		if err := s.sessionsClose(); err != nil && s.logger != nil {
			s.logger.Warn("session store close failed", "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("shutdown complete")
	}
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		if logger != nil {
			logger.Warn("metrics setup failed, continuing without telemetry", "err", err)
		}
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		mux := http.NewServeMux()
		mux.Handle(metricsPath(cfg.Metrics.Path), handler)
		metricsSrv = newNetHTTPServer(recCfg.Port, mux)
	}

	return rec, metricsSrv, shutdown
}

func metricsPath(p string) string {
	if p == "" {
		return "/metrics"
	}
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}

func stopMetrics(shutdown func(context.Context) error, logger *slog.Logger) {
	if shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logging.Warn(logger, "metrics shutdown failed", "error", err)
	}
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if logger != nil {
			logger.Info("starting "+name+" server", slog.String("addr", srv.Addr()))
		}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Warn(name+" server failed", "error", err)
			}
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
