package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yndnr/jobboard-go/internal/core/domain"
	"github.com/yndnr/jobboard-go/internal/storage/memory"
)

// Engine names accepted by Open.
const (
	EngineMemory = "memory"
	EngineBadger = "badger"
	EngineRedis  = "redis"
)

// Store is the document store contract shared by all engines.
type Store interface {
	Insert(ctx context.Context, collection string, doc domain.Document) (string, error)
	InsertWithID(ctx context.Context, collection, id string, doc domain.Document) error
	FindByID(ctx context.Context, collection, id string) (domain.Document, error)
	Find(ctx context.Context, collection string, filter domain.Filter) ([]domain.Document, error)
	SetFields(ctx context.Context, collection, id string, fields domain.Document) error
	Increment(ctx context.Context, collection, id, field string, delta int64) (int64, error)
	Delete(ctx context.Context, collection, id string) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*memory.Store)(nil)
	_ Store = (*BadgerStore)(nil)
	_ Store = (*RedisStore)(nil)
)

// Config selects and configures a storage engine.
type Config struct {
	// Engine is one of "memory", "badger" or "redis".
	Engine string

	// DataDir is the Badger directory.
	DataDir string

	Badger BadgerConfig
	Redis  RedisConfig
}

// BadgerConfig contains Badger tuning parameters.
type BadgerConfig struct {
	// GCInterval is the interval between value log GC runs. Default: 10m.
	GCInterval time.Duration

	// GCThreshold is the discard ratio that triggers a value log rewrite.
	// Default: 0.5.
	GCThreshold float64

	// CacheSize is the block cache size in bytes. Default: 64MB.
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes. Default: 1GB.
	ValueLogFileSize int64

	// SyncWrites fsyncs after every commit.
	SyncWrites bool
}

// RedisConfig configures the Redis engine.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// URL (redis:// or rediss://) overrides Addr, Password and DB.
	URL string

	PoolSize  int
	KeyPrefix string
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCInterval:       10 * time.Minute,
		GCThreshold:      0.5,
		CacheSize:        64 << 20,
		ValueLogFileSize: 1 << 30,
	}
}

// Open creates the store selected by cfg.Engine. Networked engines are
// pinged before Open returns.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Engine {
	case EngineMemory, "":
		logger.Warn("using in-memory store; data is lost on restart")
		return memory.New(), nil

	case EngineBadger:
		return NewBadgerStore(cfg.DataDir, cfg.Badger, logger)

	case EngineRedis:
		s, err := NewRedisStore(cfg.Redis)
		if err != nil {
			return nil, err
		}
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("redis: ping: %w", err)
		}
		logger.Info("redis store connected", "prefix", s.prefix)
		return s, nil

	default:
		return nil, fmt.Errorf("storage: unknown engine %q", cfg.Engine)
	}
}
