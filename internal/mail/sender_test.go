package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

func TestNewSenderPicksTransport(t *testing.T) {
	_, isLog := NewSender(config.NotificationConfig{}, zap.NewNop()).(*logSender)
	assert.True(t, isLog)

	_, isSMTP := NewSender(config.NotificationConfig{SMTPHost: "smtp.example.com", SMTPPort: 587}, zap.NewNop()).(*smtpSender)
	assert.True(t, isSMTP)
}

func TestLogSenderRecordsDelivery(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewSender(config.NotificationConfig{}, zap.New(core))

	require.NoError(t, sender.Send(context.Background(), Message{Event: "new_ticket", To: []string{"a@example.com"}, Subject: "hi"}))

	entries := logs.FilterMessage("notification delivery").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "new_ticket", entries[0].ContextMap()["event"])
}
