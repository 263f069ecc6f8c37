package broker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type Publisher struct {
	client  *Client
	timeout time.Duration
}

func NewPublisher(client *Client, cfg PublisherConfig) *Publisher {
	return &Publisher{
		client:  client,
		timeout: time.Duration(cfg.Timeout) * time.Millisecond,
	}
}

func (p *Publisher) Publish(ctx context.Context, message string) error {
	if p.client == nil || p.client.redis == nil {
		return errors.New("redis not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := &redis.XAddArgs{
		Stream: p.client.stream,
		Values: map[string]any{"body": message},
	}
	if p.client.maxLen > 0 {
		args.MaxLen = p.client.maxLen
		args.Approx = true
	}

	return p.client.redis.XAdd(ctx, args).Err()
}
