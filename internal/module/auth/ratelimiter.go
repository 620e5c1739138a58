package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a sliding-window rate limiter backed by Redis.
// It is used to throttle credential endpoints such as login.
type RedisRateLimiter struct {
	redis redis.UniversalClient
}

// NewRedisRateLimiter creates a new rate limiter.
func NewRedisRateLimiter(redis redis.UniversalClient) *RedisRateLimiter {
	return &RedisRateLimiter{redis: redis}
}

// Allow reports whether a request for key is within the limit, recording
// the request when it is.
func (r *RedisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window).UnixNano()
	windowEnd := now.UnixNano()

	// Use Lua script for atomic check-and-record
	script := redis.NewScript(`
		local key = KEYS[1]
		local window_start = tonumber(ARGV[1])
		local window_end = tonumber(ARGV[2])
		local limit = tonumber(ARGV[3])
		local expiry = tonumber(ARGV[4])

		redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
		local current = redis.call('ZCARD', key)

		if current >= limit then
			return 0
		end

		redis.call('ZADD', key, window_end, window_end)
		redis.call('PEXPIRE', key, expiry)
		return 1
	`)

	result, err := script.Run(ctx, r.redis, []string{r.key(key)},
		windowStart,
		windowEnd,
		limit,
		int64(window.Milliseconds())+60000, // buffer for cleanup
	).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	return result == 1, nil
}

// Remaining returns the number of requests left in the window for key.
func (r *RedisRateLimiter) Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	now := time.Now()
	windowStart := now.Add(-window).UnixNano()

	r.redis.ZRemRangeByScore(ctx, r.key(key), "-inf", strconv.FormatInt(windowStart, 10))

	count, err := r.redis.ZCard(ctx, r.key(key)).Result()
	if err != nil {
		return 0, fmt.Errorf("rate limit count failed: %w", err)
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Reset clears the rate limit counter for key.
func (r *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	return r.redis.Del(ctx, r.key(key)).Err()
}

func (r *RedisRateLimiter) key(key string) string {
	return "ratelimit:" + key
}
