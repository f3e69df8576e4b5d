package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNoClient is returned when a revocation cannot be recorded because Redis
// is not configured.
var ErrNoClient = errors.New("redis client not configured")

// RevokeToken marks jti as revoked until ttl elapses. ttl should be the
// remaining lifetime of the token.
func RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if client == nil {
		return ErrNoClient
	}
	if ttl <= 0 {
		return nil
	}
	return client.Set(ctx, RevokedTokenKey(jti), "1", ttl).Err()
}

// IsTokenRevoked reports whether jti was revoked. Without Redis nothing is
// revoked.
func IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if client == nil || jti == "" {
		return false, nil
	}
	n, err := client.Exists(ctx, RevokedTokenKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
