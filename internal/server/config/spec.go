package config

import "time"

// ServerConfig is the root configuration for jobboard-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Security SecuritySection `koanf:"security"`
	Storage  StorageSection  `koanf:"storage"`
	Log      LogSection      `koanf:"log"`
	Metrics  MetricsSection  `koanf:"metrics"`
}

// ServerSection configures the HTTP endpoint.
type ServerSection struct {
	Address string `koanf:"address"`

	// Environment selects cookie attributes: "production" issues
	// Secure; SameSite=None cookies, anything else SameSite=Strict.
	Environment string `koanf:"environment"`

	// CORSOrigins lists the origins allowed to send credentialed requests.
	CORSOrigins []string `koanf:"cors_origins"`

	// TrustedProxies lists the addresses or CIDR ranges of reverse proxies
	// whose X-Forwarded-For / X-Real-IP headers identify the client.
	TrustedProxies []string `koanf:"trusted_proxies"`

	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// RateLimitConfig configures per client IP rate limiting.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// SecuritySection configures session credentials.
type SecuritySection struct {
	// JWTSecret is the shared signing secret. Required, at least 32 bytes.
	JWTSecret string `koanf:"jwt_secret"`

	SessionTTL time.Duration `koanf:"session_ttl"`

	// GateStatusUpdates puts PATCH /job-applications/{id} behind the
	// session gate and an ownership check.
	GateStatusUpdates bool `koanf:"gate_status_updates"`
}

// StorageSection selects and configures the document store.
type StorageSection struct {
	// Engine is one of memory, badger or redis.
	Engine  string `koanf:"engine"`
	DataDir string `koanf:"data_dir"`

	// Timeout bounds every individual store call.
	Timeout time.Duration `koanf:"timeout"`

	Badger BadgerSection `koanf:"badger"`
	Redis  RedisSection  `koanf:"redis"`
}

// BadgerSection tunes the badger engine.
type BadgerSection struct {
	GCInterval       time.Duration `koanf:"gc_interval"`
	GCThreshold      float64       `koanf:"gc_threshold"`
	CacheSize        int64         `koanf:"cache_size"`
	ValueLogFileSize int64         `koanf:"value_log_file_size"`
	SyncWrites       bool          `koanf:"sync_writes"`
}

// RedisSection configures the redis engine. URL wins over Addr.
type RedisSection struct {
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	URL       string `koanf:"url"`
	PoolSize  int    `koanf:"pool_size"`
	KeyPrefix string `koanf:"key_prefix"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// IsProduction reports whether the server runs in production mode.
func (s ServerSection) IsProduction() bool {
	return s.Environment == EnvProduction
}
