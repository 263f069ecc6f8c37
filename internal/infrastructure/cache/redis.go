package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect opens the key value connection shared by the thumbnail cache, the
// token deny-list and the location store.
func Connect(cfg Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.URI)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()

		return nil, err
	}

	return rdb, nil
}
