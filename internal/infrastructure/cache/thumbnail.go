package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const thumbnailPrefix = "thumb:"

type ThumbnailCache struct {
	redis *redis.Client
}

func NewThumbnailCache(rdb *redis.Client) *ThumbnailCache {
	return &ThumbnailCache{redis: rdb}
}

func (c *ThumbnailCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.redis.Get(ctx, thumbnailPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return data, true, nil
}

func (c *ThumbnailCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.redis.Set(ctx, thumbnailPrefix+key, data, ttl).Err()
}

// Invalidate drops every cached thumbnail of a waypoint.
func (c *ThumbnailCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		prefixed = append(prefixed, thumbnailPrefix+k)
	}

	return c.redis.Del(ctx, prefixed...).Err()
}
