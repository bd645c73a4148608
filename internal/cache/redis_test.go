package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), ttl), mr
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c, _ := setupCache(t, time.Hour)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "resume", "Ada Lovelace")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "resume", "Ada Lovelace", []byte(`{"skills":["Python"]}`)))

	got, ok, err := c.Get(ctx, "resume", "Ada Lovelace")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"skills":["Python"]}`, string(got))

	_, ok, err = c.Get(ctx, "job", "Ada Lovelace")
	require.NoError(t, err)
	assert.False(t, ok, "kinds do not share entries")
}

func TestRedisCache_TTL(t *testing.T) {
	c, mr := setupCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "job", "Data Engineer", []byte(`{}`)))
	assert.Equal(t, time.Minute, mr.TTL(Key("job", "Data Engineer")))

	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "job", "Data Engineer")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_ServerDown(t *testing.T) {
	c, mr := setupCache(t, time.Minute)
	mr.Close()

	_, _, err := c.Get(context.Background(), "job", "x")
	assert.Error(t, err)
	assert.Error(t, c.Put(context.Background(), "job", "x", []byte(`{}`)))
}

func TestConnect(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := Connect(context.Background(), Options{Addr: mr.Addr()})
	require.NoError(t, err)
	assert.NoError(t, client.Close())
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("resume", "a"), Key("resume", "a"))
	assert.NotEqual(t, Key("resume", "a"), Key("resume", "b"))
	assert.Contains(t, Key("resume", "a"), KeyPrefix+"resume:")
}
