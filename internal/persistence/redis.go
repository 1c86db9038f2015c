package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

// Redis carries the client behind settings-reload pub/sub and the readiness check.
type Redis struct {
	Client          *redis.Client
	SettingsChannel string
}

// NewRedis builds the client. An unreachable server is only logged: the service still runs,
// but settings changes stay local to this instance until Redis comes back.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	logger = logger.With(zap.String("addr", cfg.Addr), zap.String("settings_channel", cfg.SettingsChannel))
	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("redis unreachable; settings reloads will not propagate", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client, SettingsChannel: cfg.SettingsChannel}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// CheckSettingsChannel fails when nobody subscribes to the settings channel, which means the
// local listener is down and reloads broadcast by other instances are being missed.
func (r *Redis) CheckSettingsChannel(ctx context.Context) error {
	if err := r.Ping(ctx); err != nil {
		return err
	}
	counts, err := r.Client.PubSubNumSub(ctx, r.SettingsChannel).Result()
	if err != nil {
		return fmt.Errorf("count settings subscribers: %w", err)
	}
	if counts[r.SettingsChannel] == 0 {
		return fmt.Errorf("no subscriber on %s", r.SettingsChannel)
	}
	return nil
}
