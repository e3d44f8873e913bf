package config

import "github.com/preston-bernstein/football-elo-service/internal/logging"

// Config holds runtime configuration for the service and the batch runner.
type Config struct {
	Port    string
	Version string
	Logging logging.Config
	Rating  RatingConfig
	Storage StorageConfig
	Refresh RefreshConfig
	Metrics MetricsConfig
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	metrics := loadMetrics()
	version := envOrDefault(envServiceVersion, "")
	return Config{
		Port:    envOrDefault(envPort, defaultPort),
		Version: version,
		Logging: logging.Config{
			Level:   envOrDefault(envLogLevel, defaultLogLevel),
			Format:  envOrDefault(envLogFormat, defaultLogFormat),
			Service: metrics.ServiceName,
			Version: version,
		},
		Rating:  loadRating(),
		Storage: loadStorage(),
		Refresh: loadRefresh(),
		Metrics: metrics,
	}
}
