package utils

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisConnectAttempts = 5
	redisConnectBackoff  = 2 * time.Second
)

// NewRedisClient creates a Redis client with connection pooling. The
// initial ping is retried with a fixed backoff so a slow-starting redis
// does not take the whole process down with it.
func NewRedisClient(url, password string, db int) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		// Fall back to a plain host:port address.
		opts = &redis.Options{
			Addr:     url,
			Password: password,
			DB:       db,
		}
	}

	opts.PoolSize = 100
	opts.MinIdleConns = 10
	opts.MaxRetries = 3

	client := redis.NewClient(opts)

	var lastErr error
	for attempt := 1; attempt <= redisConnectAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		lastErr = client.Ping(ctx).Err()
		cancel()

		if lastErr == nil {
			slog.Info("connected to redis", "addr", opts.Addr)
			return client, nil
		}

		slog.Warn("redis connection failed, retrying",
			"attempt", attempt,
			"error", lastErr,
		)
		time.Sleep(redisConnectBackoff)
	}

	client.Close()
	return nil, fmt.Errorf("redis unreachable after %d attempts: %w", redisConnectAttempts, lastErr)
}

// RedisHealthCheck performs a health check on the Redis connection.
func RedisHealthCheck(client *redis.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	return nil
}
