package persistence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

func TestCheckSettingsChannel(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()

	rdb := NewRedis(config.RedisConfig{Addr: srv.Addr(), SettingsChannel: "helpdesk:settings:reload"}, zap.NewNop())
	defer rdb.Close()

	require.NoError(t, rdb.Ping(ctx))
	assert.ErrorContains(t, rdb.CheckSettingsChannel(ctx), "no subscriber on helpdesk:settings:reload")

	sub := rdb.Client.Subscribe(ctx, rdb.SettingsChannel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	assert.NoError(t, rdb.CheckSettingsChannel(ctx))
}

func TestCheckSettingsChannelWhenRedisIsDown(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := NewRedis(config.RedisConfig{Addr: srv.Addr(), SettingsChannel: "helpdesk:settings:reload"}, zap.NewNop())
	defer rdb.Close()
	srv.Close()

	assert.Error(t, rdb.CheckSettingsChannel(context.Background()))
}

func TestNilRedisPing(t *testing.T) {
	var rdb *Redis
	assert.EqualError(t, rdb.Ping(context.Background()), "redis client not configured")
}
