package config

import "time"

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Default configuration values.
const (
	DefaultAddress         = "127.0.0.1:5000"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRateLimitRPS    = 20
	DefaultRateLimitBurst  = 40

	DefaultSessionTTL = time.Hour

	DefaultEngine       = "memory"
	DefaultDataDir      = "/var/lib/jobboard-server/data"
	DefaultStoreTimeout = 5 * time.Second

	DefaultBadgerGCInterval  = 10 * time.Minute
	DefaultBadgerGCThreshold = 0.5

	DefaultRedisAddr      = "127.0.0.1:6379"
	DefaultRedisKeyPrefix = "jobboard"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsPath = "/metrics"
)

// Default returns the default server configuration. The JWT secret has no
// default and must be supplied.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Address:         DefaultAddress,
			Environment:     EnvDevelopment,
			CORSOrigins:     []string{"http://localhost:5173"},
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimitRPS,
				Burst:   DefaultRateLimitBurst,
			},
		},
		Security: SecuritySection{
			SessionTTL: DefaultSessionTTL,
		},
		Storage: StorageSection{
			Engine:  DefaultEngine,
			DataDir: DefaultDataDir,
			Timeout: DefaultStoreTimeout,
			Badger: BadgerSection{
				GCInterval:  DefaultBadgerGCInterval,
				GCThreshold: DefaultBadgerGCThreshold,
			},
			Redis: RedisSection{
				Addr:      DefaultRedisAddr,
				KeyPrefix: DefaultRedisKeyPrefix,
			},
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsSection{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
	}
}
