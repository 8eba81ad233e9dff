package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"receiving/core"
	"receiving/metrics"
)

// countingConfiguration counts lookups that reach the underlying store
type countingConfiguration struct {
	*Memory
	facilityCalls int
	patternCalls  int
	facilityErr   error
}

func (c *countingConfiguration) FindFacilityByCode(ctx context.Context, code string) (*core.FinNumber, error) {
	c.facilityCalls++
	if c.facilityErr != nil {
		return nil, c.facilityErr
	}
	return c.Memory.FindFacilityByCode(ctx, code)
}

func (c *countingConfiguration) FindPatternByParseType(ctx context.Context, parseType core.ParseType) (*core.BarcodePattern, error) {
	c.patternCalls++
	return c.Memory.FindPatternByParseType(ctx, parseType)
}

func newTestCache(t *testing.T) (*CachedConfiguration, *countingConfiguration, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	mem, err := NewMemoryFromSeed(loadTestSeed(t))
	require.NoError(t, err)
	next := &countingConfiguration{Memory: mem}

	client := NewRedisClient(mr.Addr(), "", 0, 5)
	t.Cleanup(func() { _ = client.Close() })

	return NewCachedConfiguration(next, client, time.Minute, zaptest.NewLogger(t).Sugar()), next, mr
}

func TestCachedConfiguration_ReadThrough(t *testing.T) {
	ctx := context.Background()
	cache, next, mr := newTestCache(t)
	hitsBefore := testutil.ToFloat64(metrics.LookupCacheRequests.WithLabelValues("facility", "hit"))

	first, err := cache.FindFacilityByCode(ctx, "W0368")
	require.NoError(t, err)
	second, err := cache.FindFacilityByCode(ctx, "W0368")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.facilityCalls)
	assert.True(t, mr.Exists(CacheKeyFacilityPrefix+"W0368"))
	assert.Equal(t, time.Minute, mr.TTL(CacheKeyFacilityPrefix+"W0368"))
	assert.Equal(t, hitsBefore+1, testutil.ToFloat64(metrics.LookupCacheRequests.WithLabelValues("facility", "hit")))
}

func TestCachedConfiguration_ProductAndTranslation(t *testing.T) {
	ctx := context.Background()
	cache, _, mr := newTestCache(t)

	p, err := cache.FindProductByCodeAndTemperatureCategory(ctx, "E0869V00", "FROZEN")
	require.NoError(t, err)
	assert.Equal(t, "PLASMA", p.ProductFamily)
	assert.True(t, mr.Exists(CacheKeyProductPrefix+"FROZEN:E0869V00"))

	tr, err := cache.FindBloodGroupTranslation(ctx, "5100", "V")
	require.NoError(t, err)
	assert.Equal(t, "OP", tr.ToValue)
	assert.True(t, mr.Exists(CacheKeyTranslationPrefix+"V:5100"))

	cached, err := cache.FindBloodGroupTranslation(ctx, "5100", "V")
	require.NoError(t, err)
	assert.Equal(t, *tr, *cached)
}

func TestCachedConfiguration_MissesAreNotCached(t *testing.T) {
	ctx := context.Background()
	cache, next, mr := newTestCache(t)

	for i := 0; i < 2; i++ {
		_, err := cache.FindFacilityByCode(ctx, "X9999")
		assert.True(t, core.IsNotFound(err))
	}
	assert.Equal(t, 2, next.facilityCalls)
	assert.False(t, mr.Exists(CacheKeyFacilityPrefix+"X9999"))
}

func TestCachedConfiguration_PatternsBypassCache(t *testing.T) {
	ctx := context.Background()
	cache, next, mr := newTestCache(t)

	for i := 0; i < 2; i++ {
		_, err := cache.FindPatternByParseType(ctx, core.ParseTypeUnitNumber)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, next.patternCalls)
	assert.Empty(t, mr.Keys())
}

func TestCachedConfiguration_StoreErrorPropagates(t *testing.T) {
	cache, next, _ := newTestCache(t)
	storeErr := errors.New("database is locked")
	next.facilityErr = storeErr

	_, err := cache.FindFacilityByCode(context.Background(), "W0368")
	assert.ErrorIs(t, err, storeErr)
}

func TestCachedConfiguration_RedisDownFallsThrough(t *testing.T) {
	cache, next, mr := newTestCache(t)
	mr.Close()

	f, err := cache.FindFacilityByCode(context.Background(), "W0368")
	require.NoError(t, err)
	assert.Equal(t, "W0368", f.FinNumber)
	assert.Equal(t, 1, next.facilityCalls)
}

func TestCachedConfiguration_CorruptEntryIsIgnored(t *testing.T) {
	cache, next, mr := newTestCache(t)
	require.NoError(t, mr.Set(CacheKeyFacilityPrefix+"W0368", "not msgpack \xc1"))

	f, err := cache.FindFacilityByCode(context.Background(), "W0368")
	require.NoError(t, err)
	assert.Equal(t, "W0368", f.FinNumber)
	assert.Equal(t, 1, next.facilityCalls)
}

func TestCachedConfiguration_Invalidate(t *testing.T) {
	ctx := context.Background()
	cache, _, mr := newTestCache(t)
	require.NoError(t, mr.Set("unrelated", "keep"))

	_, err := cache.FindFacilityByCode(ctx, "W0368")
	require.NoError(t, err)
	_, err = cache.FindProductByCodeAndTemperatureCategory(ctx, "E0869V00", "FROZEN")
	require.NoError(t, err)

	removed, err := cache.Invalidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, []string{"unrelated"}, mr.Keys())
}

func TestNewCachedConfiguration_Panics(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	client := NewRedisClient("localhost:0", "", 0, 1)
	defer client.Close()

	assert.Panics(t, func() { NewCachedConfiguration(nil, client, time.Minute, logger) })
	assert.Panics(t, func() { NewCachedConfiguration(NewMemory(), nil, time.Minute, logger) })
	assert.Panics(t, func() { NewCachedConfiguration(NewMemory(), client, time.Minute, nil) })
}
