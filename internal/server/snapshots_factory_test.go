package server

import (
	"testing"

	"github.com/preston-bernstein/roster-service/internal/config"
)

func TestBuildSnapshotsRespectsConfig(t *testing.T) {
	cfg := config.Config{
		Snapshots: config.SnapshotConfig{
			Enabled:       true,
			RetentionDays: 1,
			Folder:        t.TempDir(),
		},
	}
	components := buildSnapshots(cfg, nil)
	if components.store == nil || components.writer == nil {
		t.Fatalf("expected snapshots components to be initialized")
	}
	if components.writer.BasePath() != cfg.Snapshots.Folder {
		t.Fatalf("expected writer rooted at %s, got %s", cfg.Snapshots.Folder, components.writer.BasePath())
	}
}

func TestBuildSnapshotsDisabled(t *testing.T) {
	for _, cfg := range []config.SnapshotConfig{
		{Enabled: false, Folder: t.TempDir()},
		{Enabled: true, Folder: ""},
	} {
		components := buildSnapshots(config.Config{Snapshots: cfg}, nil)
		if components.store != nil || components.writer != nil {
			t.Fatalf("expected no snapshot components for %+v", cfg)
		}
	}
}
