package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, limit int) (*RedisRateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRateLimiter(client, Config{Enabled: true, Limit: limit, Window: time.Minute}, nil), mr
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	limiter, mr := newLimiter(t, 2)
	ctx := context.Background()
	key := SubmitKey("customer_42")

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, time.Minute, mr.TTL(key))

	other, err := limiter.Allow(ctx, SubmitKey("customer_7"))
	require.NoError(t, err)
	assert.True(t, other)
}

func TestRedisRateLimiter_WindowExpires(t *testing.T) {
	limiter, mr := newLimiter(t, 1)
	ctx := context.Background()
	key := SubmitKey("customer_42")

	ok, _ := limiter.Allow(ctx, key)
	require.True(t, ok)
	ok, _ = limiter.Allow(ctx, key)
	require.False(t, ok)

	mr.FastForward(time.Minute)
	ok, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisRateLimiter_RedisDown(t *testing.T) {
	limiter, mr := newLimiter(t, 1)
	mr.Close()

	ok, err := limiter.Allow(context.Background(), SubmitKey("customer_42"))
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewRedisRateLimiter_Defaults(t *testing.T) {
	limiter := NewRedisRateLimiter(nil, Config{}, nil)
	assert.Equal(t, 10, limiter.limit)
	assert.Equal(t, time.Hour, limiter.window)
}

func TestSubmitKey(t *testing.T) {
	assert.Equal(t, "ratelimit:submit:customer_42", SubmitKey("customer_42"))
}
