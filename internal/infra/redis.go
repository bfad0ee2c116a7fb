package infra

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects the shared client backing the rate limiter, the
// storefront cache and the background job queues. A bad REDIS_URL fails
// at startup, not on first use.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	opts.MinIdleConns = 2

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}
