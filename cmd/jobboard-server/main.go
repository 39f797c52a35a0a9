package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/jobboard-go/internal/core/service"
	"github.com/yndnr/jobboard-go/internal/infra/buildinfo"
	"github.com/yndnr/jobboard-go/internal/infra/confloader"
	"github.com/yndnr/jobboard-go/internal/infra/shutdown"
	"github.com/yndnr/jobboard-go/internal/server/config"
	"github.com/yndnr/jobboard-go/internal/server/httpserver"
	"github.com/yndnr/jobboard-go/internal/server/httpserver/handler"
	"github.com/yndnr/jobboard-go/internal/storage"
	"github.com/yndnr/jobboard-go/internal/telemetry/logger"
	"github.com/yndnr/jobboard-go/internal/telemetry/metric"
)

const (
	limiterPruneInterval = time.Minute
	limiterIdleTimeout   = 10 * time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		envFile     = flag.String("env-file", ".env", "Path to a .env file (ignored when absent)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("jobboard-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile, *envFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	info := buildinfo.Get()
	log.Info("starting jobboard-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", config.Sanitize(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := initStorage(ctx, cfg, logger.Slog(log))
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	var metrics *metric.Registry
	if cfg.Metrics.Enabled {
		metrics = metric.NewRegistry()
		metrics.RegisterRuntime(info.Version, info.Commit, info.GoVersion)
		if m, ok := store.(interface{ RegisterMetrics(prometheus.Registerer) }); ok {
			m.RegisterMetrics(metrics.Registerer())
		}
	}

	tokens, jobs, apps, err := initServices(cfg, store, metrics)
	if err != nil {
		store.Close()
		return fmt.Errorf("init services: %w", err)
	}

	proxies, err := httpserver.ParseProxyList(cfg.Server.TrustedProxies)
	if err != nil {
		store.Close()
		return err
	}

	var limiter *httpserver.RateLimiterRegistry
	if cfg.Server.RateLimit.Enabled {
		limiter = httpserver.NewRateLimiterRegistry(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst)
		go limiter.RunPruner(ctx, limiterPruneInterval, limiterIdleTimeout)
	}

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Handler: handler.New(handler.Config{
			Tokens:       tokens,
			Jobs:         jobs,
			Applications: apps,
			Production:   cfg.Server.IsProduction(),
			Ready:        store.Ping,
		}),
		Tokens:            tokens,
		Metrics:           metrics,
		MetricsPath:       cfg.Metrics.Path,
		Logger:            log,
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimiter:       limiter,
		TrustedProxies:    proxies,
		GateStatusUpdates: cfg.Security.GateStatusUpdates,
	})

	httpServer := httpserver.New(httpserver.ServerConfig{
		Addr:         cfg.Server.Address,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, router)

	shutdownHandler := shutdown.NewHandler(cfg.Server.ShutdownTimeout)

	// Hooks run in reverse: HTTP first, storage last.
	shutdownHandler.OnClose("storage", store.Close)
	shutdownHandler.OnShutdown("background", func(context.Context) error {
		cancel()
		return nil
	})
	if *configFile != "" {
		watcher, err := watchConfig(*configFile, *envFile, log)
		if err != nil {
			log.Warn("config hot reload disabled", "error", err)
		} else {
			shutdownHandler.OnClose("config watcher", watcher.Stop)
		}
	}
	shutdownHandler.OnShutdown("http", httpServer.Shutdown)

	go func() {
		log.Info("HTTP server listening",
			"addr", cfg.Server.Address,
			"environment", cfg.Server.Environment,
			"storage", cfg.Storage.Engine)
		if err := httpServer.ListenAndServe(); err != nil {
			log.Error("HTTP server error", "error", err)
			shutdownHandler.Trigger("http server failed")
		}
	}()

	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig layers defaults, file, .env and environment, then validates.
func loadConfig(configFile, envFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithEnvFile(envFile)}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  os.Stdout,
		Service: "jobboard-server",
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

func initStorage(ctx context.Context, cfg *config.ServerConfig, log *slog.Logger) (storage.Store, error) {
	s := cfg.Storage
	openCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	return storage.Open(openCtx, storage.Config{
		Engine:  s.Engine,
		DataDir: s.DataDir,
		Badger: storage.BadgerConfig{
			GCInterval:       s.Badger.GCInterval,
			GCThreshold:      s.Badger.GCThreshold,
			CacheSize:        s.Badger.CacheSize,
			ValueLogFileSize: s.Badger.ValueLogFileSize,
			SyncWrites:       s.Badger.SyncWrites,
		},
		Redis: storage.RedisConfig{
			Addr:      s.Redis.Addr,
			Password:  s.Redis.Password,
			DB:        s.Redis.DB,
			URL:       s.Redis.URL,
			PoolSize:  s.Redis.PoolSize,
			KeyPrefix: s.Redis.KeyPrefix,
		},
	}, log)
}

func initServices(cfg *config.ServerConfig, store storage.Store, metrics *metric.Registry) (*service.TokenService, *service.JobService, *service.ApplicationService, error) {
	tokenCfg := &service.TokenServiceConfig{TTL: cfg.Security.SessionTTL}
	appCfg := &service.ApplicationServiceConfig{
		StoreTimeout:      cfg.Storage.Timeout,
		GateStatusUpdates: cfg.Security.GateStatusUpdates,
	}
	// A nil *metric.Registry stored in an interface would not compare
	// equal to nil, so observers are only set when metrics are on.
	if metrics != nil {
		tokenCfg.Observer = metrics
		appCfg.Observer = metrics
	}

	tokens, err := service.NewTokenService([]byte(cfg.Security.JWTSecret), tokenCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	jobs := service.NewJobService(store, cfg.Storage.Timeout)
	apps := service.NewApplicationService(store, jobs, appCfg)
	return tokens, jobs, apps, nil
}

// watchConfig reloads the config file on change and applies the log level.
// Other settings need a restart.
func watchConfig(configFile, envFile string, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(logger.Slog(log)))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(path string) {
		cfg, err := loadConfig(configFile, envFile)
		if err != nil {
			log.Warn("config reload rejected", "path", path, "error", err)
			return
		}
		if cfg.Log.Level == logger.GetLevel() {
			return
		}
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			log.Warn("log level not applied", "error", err)
			return
		}
		log.Info("log level changed", "level", logger.GetLevel())
	})
	watcher.StartAsync()
	return watcher, nil
}
