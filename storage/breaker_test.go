package storage

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiving/metrics"
)

func TestCacheBreaker_OpensAfterMaxFailures(t *testing.T) {
	b := newCacheBreaker(3, time.Minute)

	for i := 0; i < 2; i++ {
		require.True(t, b.allow())
		assert.Equal(t, breakerClosed, b.failure())
	}
	require.True(t, b.allow())
	assert.Equal(t, breakerOpen, b.failure())
	assert.False(t, b.allow())
}

func TestCacheBreaker_SuccessResetsFailures(t *testing.T) {
	b := newCacheBreaker(2, time.Minute)

	b.failure()
	assert.Equal(t, breakerClosed, b.success())
	assert.Equal(t, breakerClosed, b.failure())
	assert.Equal(t, breakerClosed, b.current())
}

func TestCacheBreaker_HalfOpenProbe(t *testing.T) {
	now := time.Date(2026, 1, 20, 6, 0, 0, 0, time.UTC)
	b := newCacheBreaker(1, time.Minute)
	b.now = func() time.Time { return now }

	b.failure()
	assert.False(t, b.allow())

	now = now.Add(time.Minute)
	assert.True(t, b.allow(), "probe after cooldown")
	assert.False(t, b.allow(), "one probe at a time")
	assert.Equal(t, breakerHalfOpen, b.current())

	assert.Equal(t, breakerOpen, b.failure(), "failed probe reopens")
	assert.False(t, b.allow())

	now = now.Add(time.Minute)
	require.True(t, b.allow())
	assert.Equal(t, breakerHalfOpen, b.success())
	assert.Equal(t, breakerClosed, b.current())
	assert.True(t, b.allow())
}

func TestNewCacheBreaker_Defaults(t *testing.T) {
	b := newCacheBreaker(0, 0)
	assert.Equal(t, uint32(DefaultCacheMaxFailures), b.maxFailures)
	assert.Equal(t, DefaultCacheCooldown, b.cooldown)
	assert.Equal(t, breakerClosed, b.current())
}

func TestCachedConfiguration_SkipsRedisWhileDown(t *testing.T) {
	ctx := context.Background()
	cache, next, mr := newTestCache(t)
	mr.Close()
	skipped := metrics.LookupCacheRequests.WithLabelValues("facility", "skipped")
	skippedBefore := testutil.ToFloat64(skipped)

	// each lookup fails on read and on write
	for i := 0; i < 3; i++ {
		_, err := cache.FindFacilityByCode(ctx, "W0368")
		require.NoError(t, err)
	}
	assert.Equal(t, breakerOpen, cache.breaker.current())

	_, err := cache.FindFacilityByCode(ctx, "W0368")
	require.NoError(t, err)
	assert.Equal(t, 4, next.facilityCalls)
	assert.Equal(t, skippedBefore+1, testutil.ToFloat64(skipped))
}
