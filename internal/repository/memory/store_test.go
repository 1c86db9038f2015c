package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

var _ repository.Store = (*Store)(nil)

func seedTicket(t *testing.T, s *Store) *domain.Ticket {
	t.Helper()
	ctx := context.Background()

	user := &domain.User{Username: "alice", Email: "alice@example.com", Role: domain.RoleUser, IsActive: true}
	require.NoError(t, s.Users().Create(ctx, user))

	status, err := s.Lookups().DefaultStatus(ctx)
	require.NoError(t, err)
	priority, err := s.Lookups().DefaultPriority(ctx)
	require.NoError(t, err)
	ticketType, err := s.Lookups().DefaultType(ctx)
	require.NoError(t, err)

	due := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ticket := &domain.Ticket{
		Subject:          "Printer jam",
		StatusID:         status.ID,
		PriorityID:       priority.ID,
		TypeID:           ticketType.ID,
		CreatorID:        user.ID,
		CreatedAt:        due.Add(-time.Hour),
		SLAResponseDue:   &due,
		SLAResolutionDue: &due,
	}
	require.NoError(t, s.Tickets().Create(ctx, ticket))
	return ticket
}

func TestSeededDefaults(t *testing.T) {
	s := NewSeededStore()
	ctx := context.Background()

	status, err := s.Lookups().DefaultStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New", status.Name)

	priorities, err := s.Lookups().ListPriorities(ctx)
	require.NoError(t, err)
	require.Len(t, priorities, 4)
	assert.Equal(t, "Critical", priorities[0].Name)

	settings, err := s.Settings().List(ctx)
	require.NoError(t, err)
	assert.Len(t, settings, 4)
}

func TestWithinTxRollsBack(t *testing.T) {
	s := NewSeededStore()
	ticket := seedTicket(t, s)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(tx repository.Store) error {
		_, err := tx.Tickets().MarkResolved(ctx, ticket.ID, ticket.CreatedAt)
		require.NoError(t, err)
		require.NoError(t, tx.Comments().Create(ctx, &domain.TicketComment{TicketID: ticket.ID, AuthorID: ticket.CreatorID, Content: "x"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Tickets().GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ResolvedAt)
	comments, err := s.Comments().ListByTicket(ctx, ticket.ID, true)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestMarkResolvedIsConditional(t *testing.T) {
	s := NewSeededStore()
	ticket := seedTicket(t, s)
	ctx := context.Background()

	first := ticket.CreatedAt.Add(30 * time.Minute)
	changed, err := s.Tickets().MarkResolved(ctx, ticket.ID, first)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.Tickets().MarkResolved(ctx, ticket.ID, first.Add(5*time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := s.Tickets().GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ResolvedAt)
	assert.Equal(t, first, *got.ResolvedAt)
	assert.True(t, got.SLAResolutionMet)
}

func TestMarkFirstResponseConcurrent(t *testing.T) {
	s := NewSeededStore()
	ticket := seedTicket(t, s)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			_ = s.WithinTx(ctx, func(tx repository.Store) error {
				changed, err := tx.Tickets().MarkFirstResponse(ctx, ticket.ID, ticket.CreatedAt.Add(time.Duration(offset)*time.Minute))
				if err != nil {
					return err
				}
				if changed {
					mu.Lock()
					winners++
					mu.Unlock()
				}
				return nil
			})
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}

func TestDeleteCascades(t *testing.T) {
	s := NewSeededStore()
	ticket := seedTicket(t, s)
	ctx := context.Background()

	comment := &domain.TicketComment{TicketID: ticket.ID, AuthorID: ticket.CreatorID, Content: "hi"}
	require.NoError(t, s.Comments().Create(ctx, comment))
	require.NoError(t, s.TimeEntries().Create(ctx, &domain.TimeEntry{TicketID: ticket.ID, UserID: ticket.CreatorID, StartTime: ticket.CreatedAt}))

	require.NoError(t, s.Tickets().Delete(ctx, ticket.ID))

	_, err := s.Comments().GetByID(ctx, comment.ID)
	assert.True(t, apperrors.IsNotFound(err))
	entries, err := s.TimeEntries().ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTicketFilterOwnerScope(t *testing.T) {
	s := NewSeededStore()
	ticket := seedTicket(t, s)
	ctx := context.Background()

	other := "someone-else"
	list, err := s.Tickets().List(ctx, repository.TicketFilter{OwnerID: &other})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = s.Tickets().List(ctx, repository.TicketFilter{OwnerID: &ticket.CreatorID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Status)
	assert.Equal(t, "New", list[0].Status.Name)
}

func TestRunningTimerIsUnique(t *testing.T) {
	s := NewSeededStore()
	ticket := seedTicket(t, s)
	ctx := context.Background()

	entry := domain.TimeEntry{TicketID: ticket.ID, UserID: ticket.CreatorID, StartTime: ticket.CreatedAt}
	first := entry
	require.NoError(t, s.TimeEntries().Create(ctx, &first))
	second := entry
	assert.True(t, apperrors.IsDuplicate(s.TimeEntries().Create(ctx, &second)))
}
