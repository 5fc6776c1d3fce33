package server

import (
	"log/slog"

	"github.com/preston-bernstein/roster-service/internal/config"
	"github.com/preston-bernstein/roster-service/internal/snapshots"
)

// snapshotComponents stays zero when archiving is disabled so callers see nil interfaces.
type snapshotComponents struct {
	store  *snapshots.FSStore
	writer *snapshots.Writer
}

func buildSnapshots(cfg config.Config, logger *slog.Logger) snapshotComponents {
	if !cfg.Snapshots.Enabled || cfg.Snapshots.Folder == "" {
		if logger != nil {
			logger.Info("snapshot archive disabled")
		}
		return snapshotComponents{}
	}
	basePath := cfg.Snapshots.Folder
	return snapshotComponents{
		store:  snapshots.NewFSStore(basePath),
		writer: snapshots.NewWriter(basePath, cfg.Snapshots.RetentionDays),
	}
}
