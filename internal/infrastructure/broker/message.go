package broker

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisMessage is one stream entry read through a consumer group.
type RedisMessage struct {
	stream      string
	group       string
	id          string
	body        string
	redisClient *redis.Client
}

func (m *RedisMessage) Body() string {
	return m.body
}

func (m *RedisMessage) Ack() error {
	return m.redisClient.XAck(context.Background(), m.stream, m.group, m.id).Err()
}

// Nack leaves the entry pending; a live notification is never redelivered.
func (m *RedisMessage) Nack() error {
	return nil
}
