package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TimeEntryRepository persists work logged against tickets.
type TimeEntryRepository interface {
	Create(ctx context.Context, entry *domain.TimeEntry) error
	Update(ctx context.Context, entry *domain.TimeEntry) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.TimeEntry, error)
	// GetRunning returns the entry without an end time for the ticket and user.
	GetRunning(ctx context.Context, ticketID, userID string) (*domain.TimeEntry, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TimeEntry, error)
	// List returns entries across tickets whose start time falls in the filter window.
	List(ctx context.Context, filter WorkFilter) ([]domain.TimeEntry, error)
}

// WorkFilter narrows time entries and expenses for work logs and reports.
type WorkFilter struct {
	UserID   *string
	TicketID *string
	From     *time.Time
	// To is exclusive.
	To           *time.Time
	BillableOnly bool
}

// buildWorkWhere renders the filter against the given date column.
func buildWorkWhere(filter WorkFilter, dateColumn string) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.TicketID != nil {
		args = append(args, *filter.TicketID)
		clauses = append(clauses, fmt.Sprintf("ticket_id=$%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("%s >= $%d", dateColumn, len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("%s < $%d", dateColumn, len(args)))
	}
	if filter.BillableOnly {
		clauses = append(clauses, "billable")
	}
	return strings.Join(clauses, " AND "), args
}

func (f WorkFilter) validIDs() error {
	var ids []string
	if f.UserID != nil {
		ids = append(ids, *f.UserID)
	}
	if f.TicketID != nil {
		ids = append(ids, *f.TicketID)
	}
	return checkIDs(ids...)
}

type timeEntryRepository struct {
	db Querier
}

// NewTimeEntryRepository returns a Postgres-backed implementation.
func NewTimeEntryRepository(db Querier) TimeEntryRepository {
	return &timeEntryRepository{db: db}
}

const timeEntryColumns = `id, ticket_id, user_id, start_time, end_time, duration_seconds, notes, billable, created_at`

func (r *timeEntryRepository) Create(ctx context.Context, entry *domain.TimeEntry) error {
	const query = `
        INSERT INTO time_entries (ticket_id, user_id, start_time, end_time, duration_seconds, notes, billable, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		entry.TicketID,
		entry.UserID,
		entry.StartTime,
		entry.EndTime,
		entry.DurationSeconds,
		entry.Notes,
		entry.Billable,
		entry.CreatedAt,
	).Scan(&entry.ID)
}

func (r *timeEntryRepository) Update(ctx context.Context, entry *domain.TimeEntry) error {
	const query = `
        UPDATE time_entries SET start_time=$1, end_time=$2, duration_seconds=$3, notes=$4, billable=$5
        WHERE id=$6`
	return expectOne(r.db.Exec(ctx, query,
		entry.StartTime,
		entry.EndTime,
		entry.DurationSeconds,
		entry.Notes,
		entry.Billable,
		entry.ID,
	))
}

func (r *timeEntryRepository) Delete(ctx context.Context, id string) error {
	if err := checkIDs(id); err != nil {
		return err
	}
	return expectOne(r.db.Exec(ctx, `DELETE FROM time_entries WHERE id=$1`, id))
}

func (r *timeEntryRepository) GetByID(ctx context.Context, id string) (*domain.TimeEntry, error) {
	if err := checkIDs(id); err != nil {
		return nil, err
	}
	return scanTimeEntry(r.db.QueryRow(ctx, `SELECT `+timeEntryColumns+` FROM time_entries WHERE id=$1`, id))
}

func (r *timeEntryRepository) GetRunning(ctx context.Context, ticketID, userID string) (*domain.TimeEntry, error) {
	if err := checkIDs(ticketID, userID); err != nil {
		return nil, err
	}
	const where = ` FROM time_entries WHERE ticket_id=$1 AND user_id=$2 AND end_time IS NULL`
	return scanTimeEntry(r.db.QueryRow(ctx, `SELECT `+timeEntryColumns+where, ticketID, userID))
}

func (r *timeEntryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TimeEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT `+timeEntryColumns+` FROM time_entries WHERE ticket_id=$1 ORDER BY start_time DESC`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TimeEntry
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *entry)
	}
	return result, rows.Err()
}

func (r *timeEntryRepository) List(ctx context.Context, filter WorkFilter) ([]domain.TimeEntry, error) {
	if err := filter.validIDs(); err != nil {
		return nil, nil
	}
	where, args := buildWorkWhere(filter, "start_time")
	rows, err := r.db.Query(ctx, `SELECT `+timeEntryColumns+` FROM time_entries WHERE `+where+` ORDER BY start_time DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TimeEntry
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *entry)
	}
	return result, rows.Err()
}

func scanTimeEntry(row pgx.Row) (*domain.TimeEntry, error) {
	var e domain.TimeEntry
	if err := row.Scan(
		&e.ID,
		&e.TicketID,
		&e.UserID,
		&e.StartTime,
		&e.EndTime,
		&e.DurationSeconds,
		&e.Notes,
		&e.Billable,
		&e.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}
