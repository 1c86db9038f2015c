package settings

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Broadcaster tells other instances to reload their snapshot.
type Broadcaster interface {
	Broadcast(ctx context.Context) error
}

type redisBroadcaster struct {
	client  *redis.Client
	channel string
}

// NewRedisBroadcaster publishes reload messages on channel.
func NewRedisBroadcaster(client *redis.Client, channel string) Broadcaster {
	return &redisBroadcaster{client: client, channel: channel}
}

func (b *redisBroadcaster) Broadcast(ctx context.Context) error {
	if b.client == nil {
		return nil
	}
	return b.client.Publish(ctx, b.channel, "reload").Err()
}

type noopBroadcaster struct{}

// NoopBroadcaster is used when Redis is not available.
func NoopBroadcaster() Broadcaster { return noopBroadcaster{} }

func (noopBroadcaster) Broadcast(context.Context) error { return nil }
