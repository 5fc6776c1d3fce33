package config

import "time"

// SourceConfig controls where the roster is loaded from.
type SourceConfig struct {
	Kind           string
	URL            string
	File           string
	Token          string
	MinInterval    time.Duration
	Timeout        time.Duration
	PhotoOverrides map[string]string
}

func loadSource() SourceConfig {
	return SourceConfig{
		Kind:           envOrDefault(envSourceKind, defaultSourceKind),
		URL:            envOrDefault(envSourceURL, defaultSourceURL),
		File:           envOrDefault(envSourceFile, defaultSourceFile),
		Token:          envOrDefault(envSourceToken, ""),
		MinInterval:    durationEnvOrDefault(envSourceMinInterval, defaultSourceMinInterval),
		Timeout:        durationEnvOrDefault(envSourceTimeout, defaultSourceTimeout),
		PhotoOverrides: pairsEnvOrDefault(envPhotoOverrides, defaultPhotoOverrides),
	}
}
