package server

import (
	"log/slog"
	"strings"

	"github.com/preston-bernstein/roster-service/internal/config"
	"github.com/preston-bernstein/roster-service/internal/providers"
	"github.com/preston-bernstein/roster-service/internal/providers/filesource"
	"github.com/preston-bernstein/roster-service/internal/providers/fixture"
	"github.com/preston-bernstein/roster-service/internal/providers/httpsource"
)

func selectProvider(cfg config.SourceConfig, logger *slog.Logger) providers.RosterProvider {
	switch strings.ToLower(cfg.Kind) {
	case config.SourceFixture, "":
		return fixture.New(cfg.PhotoOverrides)
	case config.SourceHTTP:
		return httpsource.NewClient(httpsource.Config{
			URL:            cfg.URL,
			Token:          cfg.Token,
			Timeout:        cfg.Timeout,
			PhotoOverrides: cfg.PhotoOverrides,
		})
	case config.SourceFile:
		return filesource.New(cfg.File, cfg.PhotoOverrides)
	default:
		if logger != nil {
			logger.Warn("unknown roster source, falling back to fixture", slog.String("source", cfg.Kind))
		}
		return fixture.New(cfg.PhotoOverrides)
	}
}
