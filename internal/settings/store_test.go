package settings

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
)

func TestFormatTicketKey(t *testing.T) {
	cases := []struct {
		pattern string
		number  int64
		want    string
	}{
		{"HD-{id:06d}", 42, "HD-000042"},
		{"T{id}", 7, "T7"},
		{"{id:4d}-X", 12, "0012-X"},
		{"TICKET-", 5, "TICKET-5"},
		{"HD-{id:03d}", 12345, "HD-12345"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatTicketKey(tc.pattern, tc.number), tc.pattern)
	}
}

func TestReloadSwapsSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSeededStore()
	s := NewStore(repo, zap.NewNop())

	assert.Equal(t, "HD-000001", s.Current().FormatTicketKey(1), "empty snapshot falls back to the default format")

	require.NoError(t, s.Reload(ctx))
	before := s.Current()
	assert.Equal(t, "Helpdesk", before.Value(domain.SettingAppName, ""))
	n, ok := before.Notification("new_ticket")
	require.True(t, ok)
	assert.Equal(t, "all_agents", n.Recipients)

	require.NoError(t, repo.Settings().Upsert(ctx, domain.Setting{Key: domain.SettingTicketIDFormat, Value: "REQ-{id:04d}"}))
	assert.Equal(t, "HD-000009", s.Current().FormatTicketKey(9), "writes are invisible until reload")

	require.NoError(t, s.Reload(ctx))
	assert.Equal(t, "REQ-0009", s.Current().FormatTicketKey(9))
	assert.Equal(t, "HD-000009", before.FormatTicketKey(9), "old snapshots are immutable")
}

func TestRedisBroadcasterPublishes(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	sub := client.Subscribe(ctx, "helpdesk:settings:reload")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, NewRedisBroadcaster(client, "helpdesk:settings:reload").Broadcast(ctx))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "reload", msg.Payload)
}
