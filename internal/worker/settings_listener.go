package worker

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Reloader refreshes a configuration snapshot.
type Reloader interface {
	Reload(ctx context.Context) error
}

// SettingsListener reloads the settings snapshot whenever another instance broadcasts a change.
type SettingsListener struct {
	client   *redis.Client
	channel  string
	reloader Reloader
	logger   *zap.Logger
}

// NewSettingsListener builds a listener on channel.
func NewSettingsListener(client *redis.Client, channel string, reloader Reloader, logger *zap.Logger) *SettingsListener {
	return &SettingsListener{client: client, channel: channel, reloader: reloader, logger: logger}
}

// Run blocks until ctx is cancelled.
func (l *SettingsListener) Run(ctx context.Context) error {
	sub := l.client.Subscribe(ctx, l.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	l.logger.Info("listening for settings reloads", zap.String("channel", l.channel))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-messages:
			if !ok {
				return nil
			}
			if err := l.reloader.Reload(ctx); err != nil {
				l.logger.Error("settings reload failed", zap.Error(err))
			}
		}
	}
}
