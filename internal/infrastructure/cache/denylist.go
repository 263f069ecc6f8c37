package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "revoked:"

type TokenDenylist struct {
	redis *redis.Client
}

func NewTokenDenylist(rdb *redis.Client) *TokenDenylist {
	return &TokenDenylist{redis: rdb}
}

// Revoke keeps tokenID deny-listed until the token would have expired anyway.
func (d *TokenDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}

	return d.redis.Set(ctx, revokedPrefix+tokenID, 1, ttl).Err()
}

func (d *TokenDenylist) Revoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.redis.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
