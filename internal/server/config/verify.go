package config

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strings"

	"github.com/yndnr/jobboard-go/internal/telemetry/logger"
)

// MinSecretLength mirrors the token codec's minimum secret size.
const MinSecretLength = 32

// Verify validates the configuration. Each section is checked in turn and
// all problems are reported together.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyServer(&cfg.Server),
		verifySecurity(&cfg.Security),
		verifyStorage(&cfg.Storage),
		verifyLog(&cfg.Log),
		verifyMetrics(&cfg.Metrics),
	)
}

func verifyServer(cfg *ServerSection) error {
	var errs []error
	if _, _, err := net.SplitHostPort(cfg.Address); err != nil {
		errs = append(errs, fmt.Errorf("server.address %q: %w", cfg.Address, err))
	}
	switch cfg.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("server.environment must be %s or %s, got %q",
			EnvDevelopment, EnvProduction, cfg.Environment))
	}
	for _, origin := range cfg.CORSOrigins {
		if origin == "*" {
			errs = append(errs, errors.New("server.cors_origins cannot contain * when credentials are allowed"))
		}
	}
	for _, proxy := range cfg.TrustedProxies {
		if !validProxy(proxy) {
			errs = append(errs, fmt.Errorf("server.trusted_proxies: %q is not an IP address or CIDR", proxy))
		}
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	if cfg.RateLimit.Enabled && (cfg.RateLimit.RPS <= 0 || cfg.RateLimit.Burst < 1) {
		errs = append(errs, errors.New("server.rate_limit needs rps > 0 and burst >= 1"))
	}
	return errors.Join(errs...)
}

func validProxy(entry string) bool {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		_, err := netip.ParsePrefix(entry)
		return err == nil
	}
	_, err := netip.ParseAddr(entry)
	return err == nil
}

func verifySecurity(cfg *SecuritySection) error {
	var errs []error
	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("security.jwt_secret is required"))
	} else if len(cfg.JWTSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("security.jwt_secret must be at least %d bytes", MinSecretLength))
	}
	if cfg.SessionTTL <= 0 {
		errs = append(errs, errors.New("security.session_ttl must be positive"))
	}
	return errors.Join(errs...)
}

func verifyStorage(cfg *StorageSection) error {
	var errs []error
	if cfg.Timeout <= 0 {
		errs = append(errs, errors.New("storage.timeout must be positive"))
	}

	switch strings.ToLower(cfg.Engine) {
	case "memory":
	case "badger":
		if cfg.DataDir == "" {
			errs = append(errs, errors.New("storage.data_dir is required for the badger engine"))
		} else if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
			errs = append(errs, fmt.Errorf("cannot create data directory: %w", err))
		}
		if cfg.Badger.GCThreshold <= 0 || cfg.Badger.GCThreshold >= 1 {
			errs = append(errs, errors.New("storage.badger.gc_threshold must be in (0, 1)"))
		}
	case "redis":
		if cfg.Redis.Addr == "" && cfg.Redis.URL == "" {
			errs = append(errs, errors.New("storage.redis.addr or storage.redis.url is required for the redis engine"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.engine must be memory, badger or redis, got %q", cfg.Engine))
	}
	return errors.Join(errs...)
}

func verifyLog(cfg *LogSection) error {
	var errs []error
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level %q is not a level", cfg.Level))
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", cfg.Format))
	}
	return errors.Join(errs...)
}

func verifyMetrics(cfg *MetricsSection) error {
	if cfg.Enabled && !strings.HasPrefix(cfg.Path, "/") {
		return fmt.Errorf("metrics.path %q must start with /", cfg.Path)
	}
	return nil
}
