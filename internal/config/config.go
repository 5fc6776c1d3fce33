package config

import "time"

// Config holds runtime configuration for the server.
type Config struct {
	Port            string
	RefreshInterval Duration
	DisplayLocale   string
	DisplayTimezone string
	CORSOrigins     []string
	Logging         LoggingConfig
	Source          SourceConfig
	Auth            AuthConfig
	Metrics         MetricsConfig
	Snapshots       SnapshotConfig
}

// LoggingConfig selects log level and output format.
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port:            envOrDefault(envPort, defaultPort),
		RefreshInterval: optionalDurationEnv(envRefreshInterval, defaultRefreshInterval),
		DisplayLocale:   envOrDefault(envDisplayLocale, defaultDisplayLocale),
		DisplayTimezone: envOrDefault(envDisplayTimezone, defaultDisplayTimezone),
		CORSOrigins:     listEnvOrDefault(envCORSOrigins, []string{"*"}),
		Logging: LoggingConfig{
			Level:  envOrDefault(envLogLevel, defaultLogLevel),
			Format: envOrDefault(envLogFormat, defaultLogFormat),
		},
		Source:    loadSource(),
		Auth:      loadAuth(),
		Metrics:   loadMetrics(),
		Snapshots: loadSnapshots(),
	}
}

// optionalDurationEnv accepts zero to disable a feature; negatives and garbage fall back.
func optionalDurationEnv(key string, defaultValue time.Duration) time.Duration {
	raw := envOrDefault(key, "")
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed < 0 {
		return defaultValue
	}
	return parsed
}
