package config

// SnapshotConfig controls the on-disk archive of loaded rosters.
type SnapshotConfig struct {
	Enabled       bool
	Folder        string // base path for snapshots
	RetentionDays int    // archived days kept before pruning
}

func loadSnapshots() SnapshotConfig {
	return SnapshotConfig{
		Enabled:       boolEnvOrDefault(envSnapshotArchive, defaultSnapshotArchive),
		Folder:        envOrDefault(envSnapshotFolder, defaultSnapshotFolder),
		RetentionDays: intEnvOrDefault(envSnapshotRetention, defaultSnapshotRetention),
	}
}
