package broker

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	redis  *redis.Client
	stream string
	group  string
	maxLen int64
}

// NewClient connects to the stream and makes sure the consumer group exists.
// Every running instance should pass its own group so each one sees every notification.
func NewClient(cfg Config) (*Client, error) {
	c, err := connect(cfg)
	if err != nil {
		return nil, err
	}

	err = c.redis.XGroupCreateMkStream(context.Background(), cfg.StreamName, cfg.GroupName, "$").Err()
	if err != nil && !isBusyGroup(err) {
		_ = c.Close()

		return nil, err
	}

	return c, nil
}

// NewPublisherClient connects without touching consumer groups. Use it for
// processes that only append notifications.
func NewPublisherClient(cfg Config) (*Client, error) {
	return connect(cfg)
}

func connect(cfg Config) (*Client, error) {
	opt, err := redis.ParseURL(cfg.URI)
	if err != nil {
		return nil, err
	}

	return &Client{
		redis:  redis.NewClient(opt),
		stream: cfg.StreamName,
		group:  cfg.GroupName,
		maxLen: cfg.MaxLen,
	}, nil
}

// DropGroup removes this instance's consumer group on shutdown.
func (c *Client) DropGroup(ctx context.Context) error {
	return c.redis.XGroupDestroy(ctx, c.stream, c.group).Err()
}

func (c *Client) Close() error {
	return c.redis.Close()
}

func isBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}
