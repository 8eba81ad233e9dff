package storage

import (
	"sync"
	"time"
)

// breakerState is the state of a cacheBreaker
type breakerState string

const (
	// breakerClosed sends every lookup to Redis
	breakerClosed breakerState = "closed"
	// breakerOpen skips Redis until the cooldown has elapsed
	breakerOpen breakerState = "open"
	// breakerHalfOpen lets a single probe through
	breakerHalfOpen breakerState = "half_open"
)

// Breaker defaults for the lookup cache
const (
	DefaultCacheMaxFailures = 5
	DefaultCacheCooldown    = 30 * time.Second
)

// cacheBreaker stops a failing Redis from adding a network round trip to
// every lookup. After maxFailures consecutive errors the cache is skipped for
// cooldown, then one probe decides whether to resume.
type cacheBreaker struct {
	maxFailures uint32
	cooldown    time.Duration
	now         func() time.Time

	mu       sync.Mutex
	state    breakerState
	failures uint32
	openedAt time.Time
	probing  bool
}

func newCacheBreaker(maxFailures uint32, cooldown time.Duration) *cacheBreaker {
	if maxFailures == 0 {
		maxFailures = DefaultCacheMaxFailures
	}
	if cooldown <= 0 {
		cooldown = DefaultCacheCooldown
	}
	return &cacheBreaker{
		maxFailures: maxFailures,
		cooldown:    cooldown,
		now:         time.Now,
		state:       breakerClosed,
	}
}

// allow reports whether Redis should be tried
func (b *cacheBreaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case breakerOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.state = breakerHalfOpen
		b.probing = true
		return true
	case breakerHalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	default:
		return true
	}
}

// success closes the breaker and returns the previous state
func (b *cacheBreaker) success() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	old := b.state
	b.state = breakerClosed
	b.failures = 0
	b.probing = false
	return old
}

// failure counts an error and returns the new state
func (b *cacheBreaker) failure() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.probing = false
	if b.state == breakerHalfOpen || b.failures >= b.maxFailures {
		b.state = breakerOpen
		b.openedAt = b.now()
	}
	return b.state
}

func (b *cacheBreaker) current() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
