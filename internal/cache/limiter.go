package cache

import (
	"context"
	"time"
)

// LoginLimiter allows at most maxAttempts logins per email inside a fixed
// window that starts with the first attempt.
type LoginLimiter struct {
	cache       *RedisCache
	maxAttempts int
	window      time.Duration
}

func NewLoginLimiter(cache *RedisCache, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		cache:       cache,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

func (l *LoginLimiter) Allow(ctx context.Context, email string) (bool, error) {
	attempts, err := loginAttemptScript.Run(ctx, l.cache.Client,
		[]string{MakeLoginAttemptsKey(email)}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return attempts <= int64(l.maxAttempts), nil
}

// Reset clears the window after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	return l.cache.Client.Del(ctx, MakeLoginAttemptsKey(email)).Err()
}
