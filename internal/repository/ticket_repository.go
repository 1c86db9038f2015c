package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketFilter captures list and search parameters.
type TicketFilter struct {
	StatusID    *string
	PriorityID  *string
	AssigneeID  *string
	Unassigned  bool
	SearchTerm  *string
	CreatedFrom *time.Time
	// CreatedTo is exclusive.
	CreatedTo *time.Time

	// OwnerID and OwnerEmail scope the list to tickets a User-role account created or requested.
	OwnerID    *string
	OwnerEmail string

	Limit  int
	Offset int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// GetForUpdate reads the ticket and locks its row until the transaction ends.
	GetForUpdate(ctx context.Context, id string) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, id, statusID string, at time.Time) error
	Assign(ctx context.Context, id string, assigneeID *string, at time.Time) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Count(ctx context.Context, filter TicketFilter) (int, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)

	// MarkResolved sets resolved_at only when it is unset and reports whether it did.
	MarkResolved(ctx context.Context, id string, at time.Time) (bool, error)
	// MarkFirstResponse sets first_response_at only when it is unset and reports whether it did.
	MarkFirstResponse(ctx context.Context, id string, at time.Time) (bool, error)
}

type ticketRepository struct {
	db Querier
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db Querier) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `
        t.id, t.number, t.subject, t.description, t.requester_name, t.requester_email,
        t.status_id, t.priority_id, t.type_id, t.assignee_id, t.creator_id,
        t.created_at, t.updated_at, t.due_date, t.sla_response_due, t.sla_resolution_due,
        t.sla_response_met, t.sla_resolution_met, t.first_response_at, t.resolved_at,
        s.id, s.name, s.description, s.color, s.is_default, s.is_closed`

const ticketFrom = `
        FROM tickets t JOIN ticket_statuses s ON s.id = t.status_id`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (subject, description, requester_name, requester_email, status_id, priority_id, type_id,
            assignee_id, creator_id, created_at, updated_at, due_date, sla_response_due, sla_resolution_due)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10,$11,$12,$13)
        RETURNING id, number, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.RequesterName,
		ticket.RequesterEmail,
		ticket.StatusID,
		ticket.PriorityID,
		ticket.TypeID,
		ticket.AssigneeID,
		ticket.CreatorID,
		ticket.CreatedAt,
		ticket.DueDate,
		ticket.SLAResponseDue,
		ticket.SLAResolutionDue,
	).Scan(&ticket.ID, &ticket.Number, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET subject=$1, description=$2, requester_name=$3, requester_email=$4,
            priority_id=$5, type_id=$6, due_date=$7, updated_at=$8
        WHERE id=$9`
	return expectOne(r.db.Exec(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.RequesterName,
		ticket.RequesterEmail,
		ticket.PriorityID,
		ticket.TypeID,
		ticket.DueDate,
		ticket.UpdatedAt,
		ticket.ID,
	))
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if err := checkIDs(id); err != nil {
		return nil, err
	}
	query := `SELECT` + ticketColumns + ticketFrom + ` WHERE t.id=$1`
	return scanTicket(r.db.QueryRow(ctx, query, id))
}

func (r *ticketRepository) GetForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	if err := checkIDs(id); err != nil {
		return nil, err
	}
	query := `SELECT` + ticketColumns + ticketFrom + ` WHERE t.id=$1 FOR UPDATE OF t`
	return scanTicket(r.db.QueryRow(ctx, query, id))
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id, statusID string, at time.Time) error {
	const query = `UPDATE tickets SET status_id=$1, updated_at=$2 WHERE id=$3`
	return expectOne(r.db.Exec(ctx, query, statusID, at, id))
}

func (r *ticketRepository) Assign(ctx context.Context, id string, assigneeID *string, at time.Time) error {
	const query = `UPDATE tickets SET assignee_id=$1, updated_at=$2 WHERE id=$3`
	return expectOne(r.db.Exec(ctx, query, assigneeID, at, id))
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	if err := checkIDs(id); err != nil {
		return err
	}
	return expectOne(r.db.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id))
}

func (r *ticketRepository) MarkResolved(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `
        UPDATE tickets SET resolved_at=$1,
            sla_resolution_met = (sla_resolution_due IS NOT NULL AND $1 <= sla_resolution_due)
        WHERE id=$2 AND resolved_at IS NULL`
	tag, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ticketRepository) MarkFirstResponse(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `
        UPDATE tickets SET first_response_at=$1,
            sla_response_met = (sla_response_due IS NOT NULL AND $1 <= sla_response_due)
        WHERE id=$2 AND first_response_at IS NULL`
	tag, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	where, args := buildTicketWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY t.created_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, ticketFrom, where, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Count(ctx context.Context, filter TicketFilter) (int, error) {
	where, args := buildTicketWhere(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM tickets t WHERE %s`, where)
	var total int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	query := `SELECT` + ticketColumns + ticketFrom + ` ORDER BY t.created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func buildTicketWhere(filter TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.StatusID != nil {
		args = append(args, *filter.StatusID)
		clauses = append(clauses, fmt.Sprintf("t.status_id=$%d", len(args)))
	}
	if filter.PriorityID != nil {
		args = append(args, *filter.PriorityID)
		clauses = append(clauses, fmt.Sprintf("t.priority_id=$%d", len(args)))
	}
	if filter.Unassigned {
		clauses = append(clauses, "t.assignee_id IS NULL")
	} else if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("t.assignee_id=$%d", len(args)))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		owner := fmt.Sprintf("t.creator_id=$%d", len(args))
		if filter.OwnerEmail != "" {
			args = append(args, filter.OwnerEmail)
			owner = fmt.Sprintf("(%s OR t.requester_email=$%d)", owner, len(args))
		}
		clauses = append(clauses, owner)
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("t.created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("t.created_at < $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(t.subject) LIKE %[1]s OR LOWER(t.description) LIKE %[1]s OR LOWER(t.requester_name) LIKE %[1]s OR LOWER(t.requester_email) LIKE %[1]s)", p))
	}
	return strings.Join(clauses, " AND "), args
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var status domain.TicketStatus
	if err := row.Scan(
		&ticket.ID,
		&ticket.Number,
		&ticket.Subject,
		&ticket.Description,
		&ticket.RequesterName,
		&ticket.RequesterEmail,
		&ticket.StatusID,
		&ticket.PriorityID,
		&ticket.TypeID,
		&ticket.AssigneeID,
		&ticket.CreatorID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.DueDate,
		&ticket.SLAResponseDue,
		&ticket.SLAResolutionDue,
		&ticket.SLAResponseMet,
		&ticket.SLAResolutionMet,
		&ticket.FirstResponseAt,
		&ticket.ResolvedAt,
		&status.ID,
		&status.Name,
		&status.Description,
		&status.Color,
		&status.IsDefault,
		&status.IsClosed,
	); err != nil {
		return nil, err
	}
	ticket.Status = &status
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
