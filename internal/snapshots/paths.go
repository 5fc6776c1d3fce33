package snapshots

import (
	"fmt"
	"path/filepath"
)

const (
	rosterDir    = "roster"
	manifestFile = "manifest.json"
)

// RosterSnapshotPath builds the path to the roster archived for a given date.
func RosterSnapshotPath(basePath, date string) string {
	return filepath.Join(basePath, rosterDir, fmt.Sprintf("%s.json", date))
}

// ManifestPath builds the path to the archive manifest.
func ManifestPath(basePath string) string {
	return filepath.Join(basePath, manifestFile)
}
