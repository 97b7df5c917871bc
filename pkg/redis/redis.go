package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects the document-store client. PoolSize bounds the
// connection pool; poolWait bounds how long a caller blocks on an exhausted
// pool before getting a timeout instead of queuing forever.
func NewRedisClient(redisURL string, poolSize int, poolWait time.Duration) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	if poolSize > 0 {
		opts.PoolSize = poolSize
	}
	if poolWait > 0 {
		opts.PoolTimeout = poolWait
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}
