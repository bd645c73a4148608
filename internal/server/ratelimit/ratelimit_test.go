package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLimiter(cfg)
	l.now = clock.Now
	t.Cleanup(l.Stop)
	return l, clock
}

func tailorConfig() Config {
	return Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		Endpoints: []EndpointConfig{
			{Path: "/tailor", Method: "POST", Limit: 10, Window: time.Hour, Burst: 2},
			{Path: "/runs/", Method: "GET", Limit: 5, Window: time.Minute},
		},
	}
}

func TestLimiter_BurstThenDeny(t *testing.T) {
	l, _ := newTestLimiter(t, tailorConfig())

	assert.True(t, l.Allow("1.2.3.4", "POST", "/tailor").Allowed)
	assert.True(t, l.Allow("1.2.3.4", "POST", "/tailor").Allowed)

	info := l.Allow("1.2.3.4", "POST", "/tailor")
	assert.False(t, info.Allowed)
	assert.Equal(t, 10, info.Limit)
	assert.Equal(t, 0, info.Remaining)
	assert.InDelta(t, 360, info.RetryAfter.Seconds(), 0.01)

	assert.True(t, l.Allow("5.6.7.8", "POST", "/tailor").Allowed, "buckets are per client")
}

func TestLimiter_Refill(t *testing.T) {
	l, clock := newTestLimiter(t, tailorConfig())
	l.Allow("c", "POST", "/tailor")
	l.Allow("c", "POST", "/tailor")
	require.False(t, l.Allow("c", "POST", "/tailor").Allowed)

	clock.Advance(7 * time.Minute)

	assert.True(t, l.Allow("c", "POST", "/tailor").Allowed)
	assert.False(t, l.Allow("c", "POST", "/tailor").Allowed)
}

func TestLimiter_Bypass(t *testing.T) {
	cfg := tailorConfig()
	cfg.Whitelist = map[string]bool{"10.0.0.1": true}
	l, _ := newTestLimiter(t, cfg)

	for range 5 {
		assert.True(t, l.Allow("10.0.0.1", "POST", "/tailor").Allowed)
		assert.True(t, l.Allow("c", "GET", "/health").Allowed)
	}

	disabled, _ := newTestLimiter(t, Config{})
	assert.True(t, disabled.Allow("c", "POST", "/tailor").Allowed)
}

func TestLimiter_DefaultLimit(t *testing.T) {
	cfg := tailorConfig()
	cfg.DefaultLimit = 1
	l, _ := newTestLimiter(t, cfg)

	assert.True(t, l.Allow("c", "POST", "/resumes").Allowed)
	assert.False(t, l.Allow("c", "POST", "/resumes").Allowed)
}

func TestLimiter_Cleanup(t *testing.T) {
	l, clock := newTestLimiter(t, tailorConfig())
	l.Allow("c", "POST", "/tailor")
	require.Len(t, l.buckets, 1)

	clock.Advance(2 * time.Hour)
	l.cleanup()

	assert.Empty(t, l.buckets)
}

func TestMatch(t *testing.T) {
	eps := tailorConfig().Endpoints

	assert.Equal(t, 10, Match("POST", "/tailor", eps).Limit)
	assert.Equal(t, 5, Match("GET", "/runs/abc", eps).Limit)
	assert.Nil(t, Match("GET", "/tailor", eps))
	assert.Nil(t, Match("POST", "/tailor/stream", eps))
}

func TestLimiter_StopTwice(t *testing.T) {
	cfg := tailorConfig()
	cfg.CleanupInterval = time.Millisecond
	l := NewLimiter(cfg)
	l.Stop()
	l.Stop()
}
