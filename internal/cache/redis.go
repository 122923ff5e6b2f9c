package cache

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache connects to addr and pings it, so a missing server is
// reported at startup instead of on the first login.
func NewRedisCache(addr string) (*RedisCache, error) {
	client := redis.NewClient(
		&redis.Options{
			Addr:     addr,
			Password: "",
			DB:       0,
		},
	)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}

	return &RedisCache{Client: client}, nil
}

func (r *RedisCache) Close() error {
	return r.Client.Close()
}
