package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"receiving/core"
	"receiving/metrics"
)

// Cache key prefixes
const (
	CacheKeyPrefix            = "receiving:"
	CacheKeyFacilityPrefix    = CacheKeyPrefix + "facility:"
	CacheKeyProductPrefix     = CacheKeyPrefix + "product:"
	CacheKeyTranslationPrefix = CacheKeyPrefix + "translation:"
)

// DefaultCacheTTL is used when a non-positive TTL is configured
const DefaultCacheTTL = 5 * time.Minute

// Cache result labels
const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
	cacheSkip  = "skipped"
)

// CachedConfiguration is a read-through Redis cache in front of another
// ConfigurationService. Only found facility, product and translation rows are
// cached; barcode patterns always come from the underlying store. A Redis
// failure is logged and the lookup falls through to the store; repeated
// failures skip Redis entirely until it recovers.
type CachedConfiguration struct {
	next    core.ConfigurationService
	client  *redis.Client
	ttl     time.Duration
	breaker *cacheBreaker
	logger  *zap.SugaredLogger
}

// NewRedisClient creates a go-redis client
func NewRedisClient(addr, password string, db, poolSize int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: poolSize,
	})
}

// NewCachedConfiguration wraps next with a Redis cache
func NewCachedConfiguration(next core.ConfigurationService, client *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *CachedConfiguration {
	if next == nil {
		panic("next is required")
	}
	if client == nil {
		panic("client is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedConfiguration{
		next:    next,
		client:  client,
		ttl:     ttl,
		breaker: newCacheBreaker(DefaultCacheMaxFailures, DefaultCacheCooldown),
		logger:  logger,
	}
}

// Ping tests the Redis connection
func (c *CachedConfiguration) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// FindPatternByParseType implements core.ConfigurationService. Patterns are not cached.
func (c *CachedConfiguration) FindPatternByParseType(ctx context.Context, parseType core.ParseType) (*core.BarcodePattern, error) {
	return c.next.FindPatternByParseType(ctx, parseType)
}

// FindFacilityByCode implements core.ConfigurationService
func (c *CachedConfiguration) FindFacilityByCode(ctx context.Context, code string) (*core.FinNumber, error) {
	key := CacheKeyFacilityPrefix + code
	var cached core.FinNumber
	if c.get(ctx, "facility", key, &cached) {
		return &cached, nil
	}

	f, err := c.next.FindFacilityByCode(ctx, code)
	if err != nil || f == nil {
		return f, err
	}
	c.set(ctx, key, f)
	return f, nil
}

// FindProductByCodeAndTemperatureCategory implements core.ConfigurationService
func (c *CachedConfiguration) FindProductByCodeAndTemperatureCategory(ctx context.Context, code, temperatureCategory string) (*core.Product, error) {
	key := CacheKeyProductPrefix + temperatureCategory + ":" + code
	var cached core.Product
	if c.get(ctx, "product", key, &cached) {
		return &cached, nil
	}

	p, err := c.next.FindProductByCodeAndTemperatureCategory(ctx, code, temperatureCategory)
	if err != nil || p == nil {
		return p, err
	}
	c.set(ctx, key, p)
	return p, nil
}

// FindBloodGroupTranslation implements core.ConfigurationService
func (c *CachedConfiguration) FindBloodGroupTranslation(ctx context.Context, fromValue, sixthDigit string) (*core.BarcodeTranslation, error) {
	key := CacheKeyTranslationPrefix + sixthDigit + ":" + fromValue
	var cached core.BarcodeTranslation
	if c.get(ctx, "translation", key, &cached) {
		return &cached, nil
	}

	t, err := c.next.FindBloodGroupTranslation(ctx, fromValue, sixthDigit)
	if err != nil || t == nil {
		return t, err
	}
	c.set(ctx, key, t)
	return t, nil
}

// Invalidate removes every cached row, for use after the underlying store was reseeded
func (c *CachedConfiguration) Invalidate(ctx context.Context) (int, error) {
	var removed int
	iter := c.client.Scan(ctx, 0, CacheKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, fmt.Errorf("failed to delete cache key %s: %w", iter.Val(), err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("failed to scan cache keys: %w", err)
	}
	return removed, nil
}

func (c *CachedConfiguration) get(ctx context.Context, kind, key string, dest interface{}) bool {
	if !c.breaker.allow() {
		metrics.LookupCacheRequests.WithLabelValues(kind, cacheSkip).Inc()
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.recordSuccess()
		metrics.LookupCacheRequests.WithLabelValues(kind, cacheMiss).Inc()
		return false
	}
	if err != nil {
		c.logger.Warnw("Lookup cache read failed", "key", key, "error", err)
		c.recordFailure()
		metrics.LookupCacheRequests.WithLabelValues(kind, cacheError).Inc()
		return false
	}
	c.recordSuccess()

	if err := msgpack.Unmarshal(data, dest); err != nil {
		c.logger.Warnw("Lookup cache entry undecodable", "key", key, "error", err)
		metrics.LookupCacheRequests.WithLabelValues(kind, cacheError).Inc()
		return false
	}

	metrics.LookupCacheRequests.WithLabelValues(kind, cacheHit).Inc()
	return true
}

func (c *CachedConfiguration) set(ctx context.Context, key string, value interface{}) {
	data, err := msgpack.Marshal(value)
	if err != nil {
		c.logger.Warnw("Lookup cache entry unencodable", "key", key, "error", err)
		return
	}
	if !c.breaker.allow() {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warnw("Lookup cache write failed", "key", key, "error", err)
		c.recordFailure()
		return
	}
	c.recordSuccess()
}

func (c *CachedConfiguration) recordSuccess() {
	if old := c.breaker.success(); old != breakerClosed {
		c.logger.Infow("Lookup cache restored", "previous_state", old)
	}
}

func (c *CachedConfiguration) recordFailure() {
	before := c.breaker.current()
	if after := c.breaker.failure(); after == breakerOpen && before != breakerOpen {
		c.logger.Warnw("Lookup cache disabled after repeated failures", "cooldown", c.breaker.cooldown)
	}
}
