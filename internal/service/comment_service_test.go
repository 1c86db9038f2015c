package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestAddCommentFirstResponse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCommentService(f.deps)
	created := f.createTicket(t, "Critical")

	res, err := svc.AddComment(ctx, created.Ticket.ID, f.user, AddCommentInput{Content: "any update?"})
	require.NoError(t, err)
	assert.False(t, res.FirstResponse)

	f.advance(30 * time.Minute)
	res, err = svc.AddComment(ctx, created.Ticket.ID, f.agent, AddCommentInput{Content: "looking into it"})
	require.NoError(t, err)
	assert.True(t, res.FirstResponse)
	assert.True(t, res.ResponseMet)

	f.advance(2 * time.Hour)
	res, err = svc.AddComment(ctx, created.Ticket.ID, f.admin, AddCommentInput{Content: "escalated"})
	require.NoError(t, err)
	assert.False(t, res.FirstResponse)

	ticket, err := f.store.Tickets().GetByID(ctx, created.Ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, ticket.FirstResponseAt)
	assert.Equal(t, fixedNow.Add(30*time.Minute), *ticket.FirstResponseAt)
	assert.True(t, ticket.SLAResponseMet)
	assert.Len(t, f.events.ofType(events.EventTicketComment), 3)
}

func TestAddCommentConcurrentStaffReplies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCommentService(f.deps)
	created := f.createTicket(t, "High")

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		first int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.AddComment(ctx, created.Ticket.ID, f.agent, AddCommentInput{Content: "on it"})
			if assert.NoError(t, err) && res.FirstResponse {
				mu.Lock()
				first++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, first)
}

func TestAddCommentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCommentService(f.deps)
	created := f.createTicket(t, "Medium")
	other := f.addUser(t, "mallory", domain.RoleUser)

	internal, err := svc.AddComment(ctx, created.Ticket.ID, f.agent, AddCommentInput{Content: "note", IsInternal: true})
	require.NoError(t, err)
	otherTicket := f.createTicket(t, "Low")
	foreign, err := svc.AddComment(ctx, otherTicket.Ticket.ID, f.agent, AddCommentInput{Content: "elsewhere"})
	require.NoError(t, err)
	missing := "missing"

	cases := []struct {
		name   string
		ticket string
		author string
		input  AddCommentInput
		code   string
	}{
		{"empty after sanitizing", created.Ticket.ID, "user", AddCommentInput{Content: "<script>alert(1)</script>"}, apperrors.CodeValidationFailed},
		{"internal by user", created.Ticket.ID, "user", AddCommentInput{Content: "secret", IsInternal: true}, apperrors.CodeForbidden},
		{"user on foreign ticket", created.Ticket.ID, "other", AddCommentInput{Content: "hi"}, apperrors.CodeForbidden},
		{"unknown ticket", "missing", "agent", AddCommentInput{Content: "hi"}, apperrors.CodeNotFound},
		{"unknown parent", created.Ticket.ID, "agent", AddCommentInput{Content: "hi", ParentID: &missing}, apperrors.CodeInvalidParent},
		{"parent on another ticket", created.Ticket.ID, "agent", AddCommentInput{Content: "hi", ParentID: &foreign.Comment.ID}, apperrors.CodeInvalidParent},
		{"user replying to internal", created.Ticket.ID, "user", AddCommentInput{Content: "hi", ParentID: &internal.Comment.ID}, apperrors.CodeInvalidParent},
	}
	authors := map[string]*domain.User{"user": f.user, "other": other, "agent": f.agent}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddComment(ctx, tc.ticket, authors[tc.author], tc.input)
			assert.True(t, apperrors.HasCode(err, tc.code), "got %v", err)
		})
	}

	comments, err := f.store.Comments().ListByTicket(ctx, created.Ticket.ID, true)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestAddCommentSanitizesAndThreads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCommentService(f.deps)
	created := f.createTicket(t, "Medium")

	parent, err := svc.AddComment(ctx, created.Ticket.ID, f.agent, AddCommentInput{Content: `<b>hello</b><script>x()</script>`})
	require.NoError(t, err)
	assert.Equal(t, "<b>hello</b>", parent.Comment.Content)

	f.advance(time.Minute)
	reply, err := svc.AddComment(ctx, created.Ticket.ID, f.user, AddCommentInput{Content: "thanks", ParentID: &parent.Comment.ID})
	require.NoError(t, err)
	require.NotNil(t, reply.Comment.ParentID)
	assert.Equal(t, parent.Comment.ID, *reply.Comment.ParentID)
}

func TestListCommentsHidesInternal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewCommentService(f.deps)
	created := f.createTicket(t, "Medium")

	_, err := svc.AddComment(ctx, created.Ticket.ID, f.agent, AddCommentInput{Content: "public"})
	require.NoError(t, err)
	f.advance(time.Second)
	_, err = svc.AddComment(ctx, created.Ticket.ID, f.agent, AddCommentInput{Content: "private", IsInternal: true})
	require.NoError(t, err)

	staffView, err := svc.ListComments(ctx, created.Ticket.ID, f.agent)
	require.NoError(t, err)
	require.Len(t, staffView, 2)
	assert.Equal(t, "public", staffView[0].Content)

	userView, err := svc.ListComments(ctx, created.Ticket.ID, f.user)
	require.NoError(t, err)
	require.Len(t, userView, 1)
	assert.False(t, userView[0].IsInternal)

	stranger := f.addUser(t, "eve", domain.RoleUser)
	_, err = svc.ListComments(ctx, created.Ticket.ID, stranger)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
