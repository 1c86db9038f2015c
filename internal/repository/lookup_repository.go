package repository

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// LookupRepository stores the administrator-managed statuses, priorities and types.
type LookupRepository interface {
	ListStatuses(ctx context.Context) ([]domain.TicketStatus, error)
	GetStatus(ctx context.Context, id string) (*domain.TicketStatus, error)
	DefaultStatus(ctx context.Context) (*domain.TicketStatus, error)
	CreateStatus(ctx context.Context, status *domain.TicketStatus) error
	UpdateStatus(ctx context.Context, status *domain.TicketStatus) error
	ClearDefaultStatus(ctx context.Context, exceptID string) error

	ListPriorities(ctx context.Context) ([]domain.TicketPriority, error)
	GetPriority(ctx context.Context, id string) (*domain.TicketPriority, error)
	DefaultPriority(ctx context.Context) (*domain.TicketPriority, error)
	CreatePriority(ctx context.Context, priority *domain.TicketPriority) error
	UpdatePriority(ctx context.Context, priority *domain.TicketPriority) error
	ClearDefaultPriority(ctx context.Context, exceptID string) error

	ListTypes(ctx context.Context) ([]domain.TicketType, error)
	GetType(ctx context.Context, id string) (*domain.TicketType, error)
	DefaultType(ctx context.Context) (*domain.TicketType, error)
	CreateType(ctx context.Context, ticketType *domain.TicketType) error
	UpdateType(ctx context.Context, ticketType *domain.TicketType) error
	ClearDefaultType(ctx context.Context, exceptID string) error
}

type lookupRepository struct {
	db Querier
}

// NewLookupRepository returns a Postgres-backed implementation.
func NewLookupRepository(db Querier) LookupRepository {
	return &lookupRepository{db: db}
}

const statusColumns = `id, name, description, color, is_default, is_closed`

func (r *lookupRepository) ListStatuses(ctx context.Context) ([]domain.TicketStatus, error) {
	rows, err := r.db.Query(ctx, `SELECT `+statusColumns+` FROM ticket_statuses ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketStatus
	for rows.Next() {
		var s domain.TicketStatus
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Color, &s.IsDefault, &s.IsClosed); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *lookupRepository) GetStatus(ctx context.Context, id string) (*domain.TicketStatus, error) {
	if err := checkIDs(id); err != nil {
		return nil, err
	}
	return r.fetchStatus(ctx, `SELECT `+statusColumns+` FROM ticket_statuses WHERE id=$1`, id)
}

func (r *lookupRepository) DefaultStatus(ctx context.Context) (*domain.TicketStatus, error) {
	return r.fetchStatus(ctx, `SELECT `+statusColumns+` FROM ticket_statuses WHERE is_default ORDER BY name LIMIT 1`)
}

func (r *lookupRepository) fetchStatus(ctx context.Context, query string, args ...any) (*domain.TicketStatus, error) {
	var s domain.TicketStatus
	if err := r.db.QueryRow(ctx, query, args...).Scan(&s.ID, &s.Name, &s.Description, &s.Color, &s.IsDefault, &s.IsClosed); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *lookupRepository) CreateStatus(ctx context.Context, status *domain.TicketStatus) error {
	const query = `
        INSERT INTO ticket_statuses (name, description, color, is_default, is_closed)
        VALUES ($1,$2,$3,$4,$5) RETURNING id`
	return r.db.QueryRow(ctx, query, status.Name, status.Description, status.Color, status.IsDefault, status.IsClosed).
		Scan(&status.ID)
}

func (r *lookupRepository) UpdateStatus(ctx context.Context, status *domain.TicketStatus) error {
	const query = `
        UPDATE ticket_statuses SET name=$1, description=$2, color=$3, is_default=$4, is_closed=$5
        WHERE id=$6`
	return expectOne(r.db.Exec(ctx, query, status.Name, status.Description, status.Color, status.IsDefault, status.IsClosed, status.ID))
}

func (r *lookupRepository) ClearDefaultStatus(ctx context.Context, exceptID string) error {
	_, err := r.db.Exec(ctx, `UPDATE ticket_statuses SET is_default=FALSE WHERE is_default AND id::text<>$1`, exceptID)
	return err
}

const priorityColumns = `id, name, description, color, is_default, sla_response_time, sla_resolution_time`

func (r *lookupRepository) ListPriorities(ctx context.Context) ([]domain.TicketPriority, error) {
	rows, err := r.db.Query(ctx, `SELECT `+priorityColumns+` FROM ticket_priorities ORDER BY sla_resolution_time NULLS LAST, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketPriority
	for rows.Next() {
		var p domain.TicketPriority
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Color, &p.IsDefault, &p.SLAResponseTime, &p.SLAResolutionTime); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *lookupRepository) GetPriority(ctx context.Context, id string) (*domain.TicketPriority, error) {
	if err := checkIDs(id); err != nil {
		return nil, err
	}
	return r.fetchPriority(ctx, `SELECT `+priorityColumns+` FROM ticket_priorities WHERE id=$1`, id)
}

func (r *lookupRepository) DefaultPriority(ctx context.Context) (*domain.TicketPriority, error) {
	return r.fetchPriority(ctx, `SELECT `+priorityColumns+` FROM ticket_priorities WHERE is_default ORDER BY name LIMIT 1`)
}

func (r *lookupRepository) fetchPriority(ctx context.Context, query string, args ...any) (*domain.TicketPriority, error) {
	var p domain.TicketPriority
	if err := r.db.QueryRow(ctx, query, args...).Scan(&p.ID, &p.Name, &p.Description, &p.Color, &p.IsDefault, &p.SLAResponseTime, &p.SLAResolutionTime); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *lookupRepository) CreatePriority(ctx context.Context, priority *domain.TicketPriority) error {
	const query = `
        INSERT INTO ticket_priorities (name, description, color, is_default, sla_response_time, sla_resolution_time)
        VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`
	return r.db.QueryRow(ctx, query,
		priority.Name,
		priority.Description,
		priority.Color,
		priority.IsDefault,
		priority.SLAResponseTime,
		priority.SLAResolutionTime,
	).Scan(&priority.ID)
}

func (r *lookupRepository) UpdatePriority(ctx context.Context, priority *domain.TicketPriority) error {
	const query = `
        UPDATE ticket_priorities SET name=$1, description=$2, color=$3, is_default=$4,
            sla_response_time=$5, sla_resolution_time=$6
        WHERE id=$7`
	return expectOne(r.db.Exec(ctx, query,
		priority.Name,
		priority.Description,
		priority.Color,
		priority.IsDefault,
		priority.SLAResponseTime,
		priority.SLAResolutionTime,
		priority.ID,
	))
}

func (r *lookupRepository) ClearDefaultPriority(ctx context.Context, exceptID string) error {
	_, err := r.db.Exec(ctx, `UPDATE ticket_priorities SET is_default=FALSE WHERE is_default AND id::text<>$1`, exceptID)
	return err
}

const typeColumns = `id, name, description, is_default`

func (r *lookupRepository) ListTypes(ctx context.Context) ([]domain.TicketType, error) {
	rows, err := r.db.Query(ctx, `SELECT `+typeColumns+` FROM ticket_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketType
	for rows.Next() {
		var t domain.TicketType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.IsDefault); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (r *lookupRepository) GetType(ctx context.Context, id string) (*domain.TicketType, error) {
	if err := checkIDs(id); err != nil {
		return nil, err
	}
	return r.fetchType(ctx, `SELECT `+typeColumns+` FROM ticket_types WHERE id=$1`, id)
}

func (r *lookupRepository) DefaultType(ctx context.Context) (*domain.TicketType, error) {
	return r.fetchType(ctx, `SELECT `+typeColumns+` FROM ticket_types WHERE is_default ORDER BY name LIMIT 1`)
}

func (r *lookupRepository) fetchType(ctx context.Context, query string, args ...any) (*domain.TicketType, error) {
	var t domain.TicketType
	if err := r.db.QueryRow(ctx, query, args...).Scan(&t.ID, &t.Name, &t.Description, &t.IsDefault); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *lookupRepository) CreateType(ctx context.Context, ticketType *domain.TicketType) error {
	const query = `INSERT INTO ticket_types (name, description, is_default) VALUES ($1,$2,$3) RETURNING id`
	return r.db.QueryRow(ctx, query, ticketType.Name, ticketType.Description, ticketType.IsDefault).Scan(&ticketType.ID)
}

func (r *lookupRepository) UpdateType(ctx context.Context, ticketType *domain.TicketType) error {
	const query = `UPDATE ticket_types SET name=$1, description=$2, is_default=$3 WHERE id=$4`
	return expectOne(r.db.Exec(ctx, query, ticketType.Name, ticketType.Description, ticketType.IsDefault, ticketType.ID))
}

func (r *lookupRepository) ClearDefaultType(ctx context.Context, exceptID string) error {
	_, err := r.db.Exec(ctx, `UPDATE ticket_types SET is_default=FALSE WHERE is_default AND id::text<>$1`, exceptID)
	return err
}
