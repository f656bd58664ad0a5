package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter defines the interface for rate limiting
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisClient defines the Redis operations the limiter needs
type RedisClient interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// Config holds rate limiting configuration
type Config struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// DefaultConfig allows ten booking submissions per customer per hour
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Limit:   10,
		Window:  time.Hour,
	}
}

// SubmitKey is the counter key for a customer's booking submissions
func SubmitKey(customerID string) string {
	return "ratelimit:submit:" + customerID
}

// RedisRateLimiter is a fixed-window counter stored in Redis
type RedisRateLimiter struct {
	redis  RedisClient
	limit  int
	window time.Duration
	logger *zap.Logger
}

// NewRedisRateLimiter creates a new Redis-based rate limiter
func NewRedisRateLimiter(redis RedisClient, config Config, logger *zap.Logger) *RedisRateLimiter {
	if config.Limit <= 0 {
		config.Limit = DefaultConfig().Limit
	}
	if config.Window <= 0 {
		config.Window = DefaultConfig().Window
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRateLimiter{
		redis:  redis,
		limit:  config.Limit,
		window: config.Window,
		logger: logger,
	}
}

// Allow counts a request against key and reports whether it is within the limit
func (r *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to increment rate limit counter",
			zap.Error(err),
			zap.String("key", key))
		return false, fmt.Errorf("rate limit error: %w", err)
	}

	// The window starts with the first request.
	if count == 1 {
		if err := r.redis.Expire(ctx, key, r.window).Err(); err != nil {
			r.logger.Error("Failed to set rate limit expiration",
				zap.Error(err),
				zap.String("key", key))
		}
	}

	return count <= int64(r.limit), nil
}
