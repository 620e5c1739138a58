// Package cache owns the Redis connection used for OAuth state and
// login rate limiting. Redis is optional: when no address is
// configured the app falls back to in-memory equivalents.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/journey-app/server/internal/shared/config"
)

// NewRedisClient connects and verifies the server is reachable, so a
// bad address fails startup instead of the first login.
func NewRedisClient(cfg *config.RedisConfig) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Address, err)
	}

	return client, nil
}

// Close releases the client's connection pool.
func Close(client redis.UniversalClient) error {
	return client.Close()
}
