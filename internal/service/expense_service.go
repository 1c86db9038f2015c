package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const day = 24 * time.Hour

// ExpenseService records money spent on tickets.
type ExpenseService struct {
	base
}

// NewExpenseService constructs the service.
func NewExpenseService(deps Dependencies) *ExpenseService {
	return &ExpenseService{base: newBase(deps)}
}

// ExpenseInput describes a new expense.
type ExpenseInput struct {
	AmountCents int64
	Description string
	Date        time.Time
	Billable    bool
}

// ExpenseUpdateInput edits an expense; nil leaves a field unchanged.
type ExpenseUpdateInput struct {
	AmountCents *int64
	Description *string
	Date        *time.Time
	Billable    *bool
}

// WorkQuery selects time entries and expenses. From and To are whole UTC days, both included.
type WorkQuery struct {
	UserID       *string
	TicketID     *string
	From         *time.Time
	To           *time.Time
	BillableOnly bool
}

func (q WorkQuery) filter() repository.WorkFilter {
	f := repository.WorkFilter{
		UserID:       trimmedPtr(q.UserID),
		TicketID:     trimmedPtr(q.TicketID),
		BillableOnly: q.BillableOnly,
	}
	if q.From != nil {
		from := q.From.UTC().Truncate(day)
		f.From = &from
	}
	if q.To != nil {
		to := q.To.UTC().Truncate(day).Add(day)
		f.To = &to
	}
	return f
}

// UserTotal sums one user's work.
type UserTotal struct {
	UserID  string
	Name    string
	Seconds int64
	Cents   int64
	Count   int
}

// TicketTotal sums the work on one ticket.
type TicketTotal struct {
	TicketID string
	Key      string
	Subject  string
	Seconds  int64
	Cents    int64
	Count    int
}

// ExpenseSheet lists expenses with their totals.
type ExpenseSheet struct {
	Expenses      []domain.Expense
	TotalCents    int64
	BillableCents int64
	ByUser        []UserTotal
	ByTicket      []TicketTotal
}

// AddExpense records an expense by the actor on the ticket.
func (s *ExpenseService) AddExpense(ctx context.Context, ticketID string, actor *domain.User, in ExpenseInput) (*domain.Expense, error) {
	if err := s.authorize(actor, auth.ResourceExpense, auth.ActionCreate); err != nil {
		return nil, err
	}
	expense := &domain.Expense{
		TicketID:    ticketID,
		UserID:      actor.ID,
		AmountCents: in.AmountCents,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date.UTC().Truncate(day),
		Billable:    in.Billable,
		CreatedAt:   s.now(),
	}
	if err := checkExpense(expense, in.Date.IsZero()); err != nil {
		return nil, err
	}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := s.loadTicket(ctx, tx.Tickets(), ticketID, false); err != nil {
			return err
		}
		if err := tx.Expenses().Create(ctx, expense); err != nil {
			return s.storageError("create expense", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.passThrough("add expense", err)
	}
	return expense, nil
}

// UpdateExpense edits an expense owned by the actor, or any expense for an Administrator.
func (s *ExpenseService) UpdateExpense(ctx context.Context, id string, actor *domain.User, in ExpenseUpdateInput) (*domain.Expense, error) {
	if err := s.authorize(actor, auth.ResourceExpense, auth.ActionUpdate); err != nil {
		return nil, err
	}
	var expense *domain.Expense

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		if expense, err = s.ownedExpense(ctx, tx.Expenses(), id, actor); err != nil {
			return err
		}
		missingDate := false
		if in.AmountCents != nil {
			expense.AmountCents = *in.AmountCents
		}
		if in.Description != nil {
			expense.Description = strings.TrimSpace(*in.Description)
		}
		if in.Date != nil {
			missingDate = in.Date.IsZero()
			expense.Date = in.Date.UTC().Truncate(day)
		}
		if in.Billable != nil {
			expense.Billable = *in.Billable
		}
		if err := checkExpense(expense, missingDate); err != nil {
			return err
		}
		if err := tx.Expenses().Update(ctx, expense); err != nil {
			return s.storageError("update expense", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.passThrough("update expense", err)
	}
	return expense, nil
}

// DeleteExpense removes an expense owned by the actor, or any expense for an Administrator.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id string, actor *domain.User) error {
	if err := s.authorize(actor, auth.ResourceExpense, auth.ActionUpdate); err != nil {
		return err
	}
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := s.ownedExpense(ctx, tx.Expenses(), id, actor); err != nil {
			return err
		}
		if err := tx.Expenses().Delete(ctx, id); err != nil {
			return s.storageError("delete expense", err)
		}
		return nil
	})
	return s.passThrough("delete expense", err)
}

// ListExpenses returns matching expenses with totals per user and per ticket.
func (s *ExpenseService) ListExpenses(ctx context.Context, viewer *domain.User, q WorkQuery) (*ExpenseSheet, error) {
	if err := s.authorize(viewer, auth.ResourceExpense, auth.ActionRead); err != nil {
		return nil, err
	}
	expenses, err := s.store.Expenses().List(ctx, q.filter())
	if err != nil {
		return nil, s.storageError("list expenses", err)
	}
	sheet := &ExpenseSheet{Expenses: expenses}
	totals := newWorkTotals()
	for _, e := range expenses {
		sheet.TotalCents += e.AmountCents
		if e.Billable {
			sheet.BillableCents += e.AmountCents
		}
		totals.addExpense(e)
	}
	if sheet.ByUser, sheet.ByTicket, err = totals.resolve(ctx, s.base); err != nil {
		return nil, err
	}
	return sheet, nil
}

func checkExpense(e *domain.Expense, missingDate bool) error {
	if e.AmountCents < 1 {
		return apperrors.NewValidationError("amount must be at least 0.01", map[string]any{"field": "amount"})
	}
	if e.Description == "" {
		return apperrors.NewValidationError("description is required", map[string]any{"field": "description"})
	}
	if missingDate {
		return apperrors.NewValidationError("date is required", map[string]any{"field": "date"})
	}
	return nil
}

func (s *ExpenseService) ownedExpense(ctx context.Context, repo repository.ExpenseRepository, id string, actor *domain.User) (*domain.Expense, error) {
	expense, err := repo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("expense", map[string]any{"expense_id": id})
		}
		return nil, s.storageError("load expense", err)
	}
	if expense.UserID != actor.ID && !s.can(actor, auth.ResourceExpense, auth.ActionManage) {
		return nil, apperrors.NewForbidden("only the owner or an administrator may change this expense")
	}
	return expense, nil
}
