package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"receiving/config"
	"receiving/core"
	"receiving/storage"
)

// redisPingTimeout bounds the startup connectivity check
const redisPingTimeout = 2 * time.Second

// Stores holds the reference-data collaborators the use cases read from
type Stores struct {
	Configuration core.ConfigurationService
	Consequences  core.ProductConsequenceRepository

	// SQLite is set when the sqlite driver is configured
	SQLite *storage.SQLite
	// Cache is set when Redis is enabled and reachable
	Cache *storage.CachedConfiguration

	redis *redis.Client
}

// InitStorage opens the configured store and, when enabled, fronts it with the
// Redis lookup cache. An unreachable Redis is logged and skipped.
func InitStorage(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) (*Stores, error) {
	stores := &Stores{}

	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		sqlite, err := InitSQLite(cfg.GetSQLitePath(), sugar)
		if err != nil {
			return nil, err
		}
		stores.SQLite = sqlite
		stores.Configuration = sqlite
		stores.Consequences = sqlite
	default:
		mem, err := InitMemory(cfg.Storage.SeedFile, sugar)
		if err != nil {
			return nil, err
		}
		stores.Configuration = mem
		stores.Consequences = mem
	}

	if cfg.Redis.Enabled {
		client := storage.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
		cache := storage.NewCachedConfiguration(stores.Configuration, client, cfg.Redis.TTL, sugar)

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		err := cache.Ping(pingCtx)
		cancel()
		if err != nil {
			sugar.Warnw("Redis unavailable, lookups will not be cached", "addr", cfg.Redis.Addr, "error", err)
			_ = client.Close()
		} else {
			sugar.Infow("Redis lookup cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
			stores.redis = client
			stores.Cache = cache
			stores.Configuration = cache
		}
	}

	return stores, nil
}

// InitSQLite opens the SQLite reference store at path
func InitSQLite(path string, sugar *zap.SugaredLogger) (*storage.SQLite, error) {
	sqlite, err := storage.NewSQLite(path, sugar)
	if err != nil {
		sugar.Errorw("Failed to open SQLite", "path", path, "hint", ClassifySQLiteError(err, path))
		return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
	}
	return sqlite, nil
}

// InitMemory loads the seed file into an in-memory store
func InitMemory(seedFile string, sugar *zap.SugaredLogger) (*storage.Memory, error) {
	seed, err := storage.LoadSeed(seedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed: %w", err)
	}
	mem, err := storage.NewMemoryFromSeed(seed)
	if err != nil {
		return nil, err
	}
	sugar.Infow("In-memory reference store loaded",
		"seed_file", seedFile,
		"patterns", len(seed.Patterns),
		"consequences", len(seed.Consequences))
	return mem, nil
}

// Close releases the store connections
func (s *Stores) Close() error {
	var firstErr error
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close redis: %w", err)
		}
	}
	if s.SQLite != nil {
		if err := s.SQLite.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
