package config

import "time"

const (
	envPort            = "PORT"
	envRefreshInterval = "REFRESH_INTERVAL"
	envDisplayLocale   = "DISPLAY_LOCALE"
	envDisplayTimezone = "DISPLAY_TIMEZONE"
	envCORSOrigins     = "CORS_ORIGINS"
	envLogLevel        = "LOG_LEVEL"
	envLogFormat       = "LOG_FORMAT"

	envSourceKind        = "SOURCE_KIND"
	envSourceURL         = "SOURCE_URL"
	envSourceFile        = "SOURCE_FILE"
	envSourceToken       = "SOURCE_TOKEN"
	envSourceMinInterval = "SOURCE_MIN_INTERVAL"
	envSourceTimeout     = "SOURCE_TIMEOUT"
	envPhotoOverrides    = "PHOTO_OVERRIDES"

	envAuthUsers           = "AUTH_USERS"
	envAuthDefaultPassword = "AUTH_DEFAULT_PASSWORD"
	envSessionStore        = "SESSION_STORE"
	envSessionTTL          = "SESSION_TTL"
	envRedisAddr           = "REDIS_ADDR"
	envRedisPassword       = "REDIS_PASSWORD"
	envRedisDB             = "REDIS_DB"

	envMetricsPort  = "METRICS_PORT"
	envMetricsOn    = "METRICS_ENABLED"
	envMetricsPath  = "METRICS_PATH"
	envOtelEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService  = "OTEL_SERVICE_NAME"
	envOtelInsecure = "OTEL_EXPORTER_OTLP_INSECURE"

	envSnapshotArchive   = "SNAPSHOT_ARCHIVE_ENABLED"
	envSnapshotFolder    = "SNAPSHOT_FOLDER"
	envSnapshotRetention = "SNAPSHOT_RETENTION_DAYS"

	defaultPort = "4000"
	// Zero disables the background refresher; the roster loads once at startup.
	defaultRefreshInterval = Duration(0)
	defaultDisplayLocale   = "fr-FR"
	defaultDisplayTimezone = "Africa/Tunis"
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"

	SourceFixture = "fixture"
	SourceHTTP    = "http"
	SourceFile    = "file"

	defaultSourceKind        = SourceFixture
	defaultSourceURL         = "http://localhost:3000/data/players.json"
	defaultSourceFile        = "data/players.json"
	defaultSourceMinInterval = 2 * Duration(time.Second)
	defaultSourceTimeout     = 10 * Duration(time.Second)
	defaultPhotoOverrides    = "910919010=/images/910919010.jpeg"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"

	defaultSessionStore = SessionStoreMemory
	defaultSessionTTL   = 12 * Duration(time.Hour)
	defaultRedisAddr    = "localhost:6379"

	defaultMetricsPort = "9090"
	defaultMetricsPath = "/metrics"
	defaultServiceName = "roster-service"

	defaultSnapshotArchive   = true
	defaultSnapshotFolder    = "data/snapshots"
	defaultSnapshotRetention = 30
)
