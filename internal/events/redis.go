package events

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"distrust-bot/internal/domain"
)

type redisPublisherClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type redisPublisher struct {
	client  redisPublisherClient
	channel string
	timeout time.Duration
}

// NewRedisPublisher publica cada evento como JSON en un canal de Redis pub/sub.
func NewRedisPublisher(client *redis.Client, channel string) Publisher {
	if client == nil {
		return nil
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "distrust:events"
	}
	return &redisPublisher{
		client:  client,
		channel: channel,
		timeout: 500 * time.Millisecond,
	}
}

func (p *redisPublisher) Publish(ctx context.Context, event domain.GameEvent) error {
	data, err := encode(event)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.client.Publish(ctx, p.channel, data).Err()
}
