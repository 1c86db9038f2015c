package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/mail"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg mail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestNotificationWorkerDeliversAndDrains(t *testing.T) {
	sender := &recordingSender{}
	w := NewNotificationWorker(sender, zap.NewNop(), nil, 8)

	for i := 0; i < 3; i++ {
		require.NoError(t, w.Enqueue(mail.Message{Event: "new_ticket", To: []string{"a@example.com"}}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	assert.Eventually(t, func() bool { return sender.count() == 3 }, time.Second, 10*time.Millisecond)

	require.NoError(t, w.Enqueue(mail.Message{Event: "ticket_comment"}))
	cancel()
	w.Wait()
	assert.Equal(t, 4, sender.count())
}

func TestNotificationWorkerQueueFull(t *testing.T) {
	w := NewNotificationWorker(&recordingSender{}, zap.NewNop(), nil, 1)
	require.NoError(t, w.Enqueue(mail.Message{}))
	assert.ErrorIs(t, w.Enqueue(mail.Message{}), ErrQueueFull)
}

func TestNotificationWorkerSurvivesSendErrors(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	w := NewNotificationWorker(sender, zap.NewNop(), nil, 4)
	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	require.NoError(t, w.Enqueue(mail.Message{Event: "a"}))
	require.NoError(t, w.Enqueue(mail.Message{Event: "b"}))
	assert.Eventually(t, func() bool { return sender.count() == 2 }, time.Second, 10*time.Millisecond)
	cancel()
	w.Wait()
}

type countingReloader struct{ n atomic.Int32 }

func (r *countingReloader) Reload(context.Context) error {
	r.n.Add(1)
	return nil
}

func TestSettingsListenerReloadsOnMessage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	reloader := &countingReloader{}
	listener := NewSettingsListener(client, "helpdesk:settings:reload", reloader, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- listener.Run(ctx) }()

	assert.Eventually(t, func() bool {
		n, err := client.Publish(context.Background(), "helpdesk:settings:reload", "reload").Result()
		return err == nil && n > 0
	}, time.Second, 20*time.Millisecond)
	assert.Eventually(t, func() bool { return reloader.n.Load() >= 1 }, time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
