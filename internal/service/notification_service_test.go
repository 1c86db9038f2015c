package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/mail"
)

type captureQueue struct {
	mu   sync.Mutex
	msgs []mail.Message
}

func (q *captureQueue) Enqueue(msg mail.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, msg)
	return nil
}

func (q *captureQueue) take(event string) []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	var to []string
	for _, m := range q.msgs {
		if m.Event == event {
			to = append(to, m.To...)
		}
	}
	return to
}

func notifyingFixture(t *testing.T) (*fixture, *captureQueue) {
	t.Helper()
	f := newFixture(t)
	q := &captureQueue{}
	NewNotificationService(f.deps, q).RegisterHandlers()
	return f, q
}

func TestNotifyNewTicketAllAgents(t *testing.T) {
	f, q := notifyingFixture(t)
	f.createTicket(t, "Medium")

	assert.ElementsMatch(t, []string{"agent@example.com", "root@example.com"}, q.take("new_ticket"))
}

func TestNotifyCommentsRespectInternal(t *testing.T) {
	f, q := notifyingFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t, "Medium").Ticket
	svc := NewCommentService(f.deps)

	_, err := svc.AddComment(ctx, ticket.ID, f.agent, AddCommentInput{Content: "staff only", IsInternal: true})
	require.NoError(t, err)
	assert.Empty(t, q.take("ticket_comment"))

	_, err = svc.AddComment(ctx, ticket.ID, f.agent, AddCommentInput{Content: "we are on it"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@example.com"}, q.take("ticket_comment"))
}

func TestNotifyResolvedDedupesRequester(t *testing.T) {
	f, q := notifyingFixture(t)
	ticket := f.createTicket(t, "Medium").Ticket

	_, err := NewTransitionService(f.deps).ApplyStatusChange(context.Background(), ticket.ID, f.statuses["Resolved"], f.agent)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@example.com"}, q.take("ticket_resolved"))
}

func TestNotifyDisabledEvent(t *testing.T) {
	f, q := notifyingFixture(t)
	ctx := context.Background()
	_, err := NewAdminService(f.deps, nil, 4).UpdateNotification(ctx, f.admin, domain.NotificationSetting{
		EventType: "new_ticket", IsEnabled: false, Recipients: "all_agents",
	})
	require.NoError(t, err)

	f.createTicket(t, "Medium")
	assert.Empty(t, q.take("new_ticket"))
}

func TestResolveRecipients(t *testing.T) {
	f := newFixture(t)
	svc := NewNotificationService(f.deps, &captureQueue{})
	agentID := f.agent.ID
	ticket := &domain.Ticket{CreatorID: f.user.ID, AssigneeID: &agentID, RequesterEmail: "outside@corp.test"}

	got, err := svc.resolveRecipients(context.Background(), "creator, requester,assigned_agent, admin, ops@corp.test, "+f.agent.ID, ticket)
	require.NoError(t, err)

	byEmail := map[string]bool{}
	for _, r := range got {
		byEmail[r.email] = r.staff
	}
	assert.Equal(t, map[string]bool{
		"alice@example.com": false,
		"outside@corp.test": false,
		"agent@example.com": true,
		"root@example.com":  true,
		"ops@corp.test":     false,
	}, byEmail)
	assert.Len(t, got, 5)
}
