package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ExpenseRepository persists money spent on tickets.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *domain.Expense) error
	Update(ctx context.Context, expense *domain.Expense) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
	// List filters on the expense date.
	List(ctx context.Context, filter WorkFilter) ([]domain.Expense, error)
}

type expenseRepository struct {
	db Querier
}

// NewExpenseRepository returns a Postgres-backed implementation.
func NewExpenseRepository(db Querier) ExpenseRepository {
	return &expenseRepository{db: db}
}

const expenseColumns = `id, ticket_id, user_id, amount_cents, description, date, billable, created_at`

func (r *expenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	const query = `
        INSERT INTO expenses (ticket_id, user_id, amount_cents, description, date, billable, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		expense.TicketID,
		expense.UserID,
		expense.AmountCents,
		expense.Description,
		expense.Date,
		expense.Billable,
		expense.CreatedAt,
	).Scan(&expense.ID)
}

func (r *expenseRepository) Update(ctx context.Context, expense *domain.Expense) error {
	const query = `UPDATE expenses SET amount_cents=$1, description=$2, date=$3, billable=$4 WHERE id=$5`
	return expectOne(r.db.Exec(ctx, query,
		expense.AmountCents,
		expense.Description,
		expense.Date,
		expense.Billable,
		expense.ID,
	))
}

func (r *expenseRepository) Delete(ctx context.Context, id string) error {
	if err := checkIDs(id); err != nil {
		return err
	}
	return expectOne(r.db.Exec(ctx, `DELETE FROM expenses WHERE id=$1`, id))
}

func (r *expenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	if err := checkIDs(id); err != nil {
		return nil, err
	}
	return scanExpense(r.db.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id=$1`, id))
}

func (r *expenseRepository) List(ctx context.Context, filter WorkFilter) ([]domain.Expense, error) {
	if err := filter.validIDs(); err != nil {
		return nil, nil
	}
	where, args := buildWorkWhere(filter, "date")
	rows, err := r.db.Query(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE `+where+` ORDER BY date DESC, created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *expense)
	}
	return result, rows.Err()
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var e domain.Expense
	if err := row.Scan(
		&e.ID,
		&e.TicketID,
		&e.UserID,
		&e.AmountCents,
		&e.Description,
		&e.Date,
		&e.Billable,
		&e.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}
