package config

import "time"

const (
	envPort              = "PORT"
	envLogLevel          = "LOG_LEVEL"
	envLogFormat         = "LOG_FORMAT"
	envDataDir           = "DATA_DIR"
	envMatchesDB         = "MATCHES_DB"
	envMatchesCSV        = "MATCHES_CSV"
	envRefreshSchedule   = "REFRESH_SCHEDULE"
	envRefreshOnStart    = "REFRESH_ON_START"
	envRefreshTimeout    = "REFRESH_TIMEOUT"
	envAdminToken        = "ADMIN_TOKEN"
	envKFactor           = "ELO_K_FACTOR"
	envHomeAdvantage     = "ELO_HOME_ADVANTAGE"
	envUseMOV            = "ELO_USE_MOV"
	envDefaultRating     = "ELO_DEFAULT_RATING"
	envBandWidth         = "ELO_BAND_WIDTH"
	envBandCount         = "ELO_BAND_COUNT"
	envVenueHome         = "VENUE_HOME_MULTIPLIER"
	envVenueAway         = "VENUE_AWAY_MULTIPLIER"
	envVenueDrawHome     = "VENUE_DRAW_HOME_MULTIPLIER"
	envVenueDrawAway     = "VENUE_DRAW_AWAY_MULTIPLIER"
	envMetricsPort       = "METRICS_PORT"
	envMetricsOn         = "METRICS_ENABLED"
	envOtelEndpoint      = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService       = "OTEL_SERVICE_NAME"
	envOtelInsecure      = "OTEL_EXPORTER_OTLP_INSECURE"
	envServiceVersion    = "SERVICE_VERSION"
	defaultServiceName   = "football-elo-service"
	defaultPort          = "4000"
	defaultLogLevel      = "info"
	defaultLogFormat     = "text"
	defaultDataDir       = "data"
	defaultMetricsPort   = "9090"
	defaultRefreshOnBoot = true
	// Hourly is plenty; results land at most a few times a day.
	defaultRefreshSchedule = "@every 1h"
	defaultRefreshTimeout  = 2 * Duration(time.Minute)
)
