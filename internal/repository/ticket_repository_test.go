package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const sampleTicketID = "8c5b4a8e-3f0e-4a53-9a57-0b6d2c1f6e10"

func strPtr(s string) *string { return &s }

func newMockQuerier(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestBuildTicketWhere(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		filter TicketFilter
		where  string
		args   []any
	}{
		{
			name:  "no filters",
			where: "1=1",
			args:  []any{},
		},
		{
			name:   "status and priority",
			filter: TicketFilter{StatusID: strPtr("s1"), PriorityID: strPtr("p1")},
			where:  "1=1 AND t.status_id=$1 AND t.priority_id=$2",
			args:   []any{"s1", "p1"},
		},
		{
			name:   "unassigned wins over assignee",
			filter: TicketFilter{Unassigned: true, AssigneeID: strPtr("a1")},
			where:  "1=1 AND t.assignee_id IS NULL",
			args:   []any{},
		},
		{
			name:   "assignee",
			filter: TicketFilter{AssigneeID: strPtr("a1")},
			where:  "1=1 AND t.assignee_id=$1",
			args:   []any{"a1"},
		},
		{
			name:   "owner with requester email",
			filter: TicketFilter{StatusID: strPtr("s1"), OwnerID: strPtr("u1"), OwnerEmail: "alice@example.com"},
			where:  "1=1 AND t.status_id=$1 AND (t.creator_id=$2 OR t.requester_email=$3)",
			args:   []any{"s1", "u1", "alice@example.com"},
		},
		{
			name:   "owner without email",
			filter: TicketFilter{OwnerID: strPtr("u1")},
			where:  "1=1 AND t.creator_id=$1",
			args:   []any{"u1"},
		},
		{
			name:   "created range",
			filter: TicketFilter{CreatedFrom: &from, CreatedTo: &to},
			where:  "1=1 AND t.created_at >= $1 AND t.created_at < $2",
			args:   []any{from, to},
		},
		{
			name:   "search reuses one placeholder",
			filter: TicketFilter{PriorityID: strPtr("p1"), SearchTerm: strPtr("  VPN ")},
			where: "1=1 AND t.priority_id=$1 AND (LOWER(t.subject) LIKE $2 OR LOWER(t.description) LIKE $2 " +
				"OR LOWER(t.requester_name) LIKE $2 OR LOWER(t.requester_email) LIKE $2)",
			args: []any{"p1", "%vpn%"},
		},
		{
			name:   "blank search is ignored",
			filter: TicketFilter{SearchTerm: strPtr("   ")},
			where:  "1=1",
			args:   []any{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			where, args := buildTicketWhere(tc.filter)
			assert.Equal(t, tc.where, where)
			assert.Equal(t, tc.args, args)
		})
	}
}

func TestTicketRepositoryConditionalUpdates(t *testing.T) {
	at := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("resolved_at set once", func(t *testing.T) {
		mock := newMockQuerier(t)
		repo := NewTicketRepository(mock)

		mock.ExpectExec(`(?s)UPDATE tickets SET resolved_at=\$1,.*WHERE id=\$2 AND resolved_at IS NULL`).
			WithArgs(at, sampleTicketID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(`(?s)UPDATE tickets SET resolved_at=\$1,.*WHERE id=\$2 AND resolved_at IS NULL`).
			WithArgs(at, sampleTicketID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		set, err := repo.MarkResolved(ctx, sampleTicketID, at)
		require.NoError(t, err)
		assert.True(t, set)

		set, err = repo.MarkResolved(ctx, sampleTicketID, at)
		require.NoError(t, err)
		assert.False(t, set)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("first_response_at set once", func(t *testing.T) {
		mock := newMockQuerier(t)
		repo := NewTicketRepository(mock)

		mock.ExpectExec(`(?s)UPDATE tickets SET first_response_at=\$1,.*sla_response_met.*WHERE id=\$2 AND first_response_at IS NULL`).
			WithArgs(at, sampleTicketID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		set, err := repo.MarkFirstResponse(ctx, sampleTicketID, at)
		require.NoError(t, err)
		assert.True(t, set)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status update on missing row", func(t *testing.T) {
		mock := newMockQuerier(t)
		repo := NewTicketRepository(mock)

		mock.ExpectExec(`UPDATE tickets SET status_id=\$1`).
			WithArgs("s2", at, sampleTicketID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdateStatus(ctx, sampleTicketID, "s2", at)
		assert.ErrorIs(t, err, pgx.ErrNoRows)
		assert.True(t, apperrors.IsNotFound(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepositoriesRejectMalformedIDsWithoutQuerying(t *testing.T) {
	ctx := context.Background()
	mock := newMockQuerier(t)

	_, err := NewTicketRepository(mock).GetByID(ctx, "nope")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	_, err = NewTicketRepository(mock).GetForUpdate(ctx, "42")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	_, err = NewLookupRepository(mock).GetStatus(ctx, "nope")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	_, err = NewCommentRepository(mock).GetByID(ctx, "parent")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	_, err = NewUserRepository(mock).GetByID(ctx, "x")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	_, err = NewTimeEntryRepository(mock).GetRunning(ctx, sampleTicketID, "bob")
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	// No expectations were registered, so any query would have failed the mock.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepositoryGetByIDNoRows(t *testing.T) {
	mock := newMockQuerier(t)
	mock.ExpectQuery(`FROM ticket_comments WHERE id=\$1`).
		WithArgs(sampleTicketID).
		WillReturnError(pgx.ErrNoRows)

	comment, err := NewCommentRepository(mock).GetByID(context.Background(), sampleTicketID)
	assert.Nil(t, comment)
	assert.True(t, apperrors.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepositoryCreateReturnsID(t *testing.T) {
	mock := newMockQuerier(t)
	created := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO ticket_comments`).
		WithArgs(sampleTicketID, "author", "hello", true, (*string)(nil), created).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("c1"))

	comment := &domain.TicketComment{
		TicketID:   sampleTicketID,
		AuthorID:   "author",
		Content:    "hello",
		IsInternal: true,
		CreatedAt:  created,
	}
	require.NoError(t, NewCommentRepository(mock).Create(context.Background(), comment))
	assert.Equal(t, "c1", comment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
