package cache

import (
	"context"
	"time"

	"github.com/qs-lzh/cinema-booking/internal/util"
)

// RevocationList keeps logged out tokens in redis until they would have
// expired anyway.
type RevocationList struct {
	cache *RedisCache
	clock util.Clock
}

func NewRevocationList(cache *RedisCache, clock util.Clock) *RevocationList {
	return &RevocationList{
		cache: cache,
		clock: clock,
	}
}

func (l *RevocationList) Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(l.clock.Now())
	if ttl <= 0 {
		return nil
	}
	key := MakeRevokedTokenKey(tokenHash)
	return revokeTokenScript.Run(ctx, l.cache.Client, []string{key}, ttl.Milliseconds()).Err()
}

func (l *RevocationList) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	n, err := l.cache.Client.Exists(ctx, MakeRevokedTokenKey(tokenHash)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
