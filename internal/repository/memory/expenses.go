package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type expenseRepo struct {
	s *Store
}

func (r *expenseRepo) Create(_ context.Context, expense *domain.Expense) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	if _, ok := st.tickets[expense.TicketID]; !ok {
		return apperrors.ErrNotFound
	}
	if _, ok := st.users[expense.UserID]; !ok {
		return apperrors.ErrNotFound
	}
	expense.ID = newID()
	st.expenses[expense.ID] = *expense
	return nil
}

func (r *expenseRepo) Update(_ context.Context, expense *domain.Expense) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	row, ok := st.expenses[expense.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	row.AmountCents = expense.AmountCents
	row.Description = expense.Description
	row.Date = expense.Date
	row.Billable = expense.Billable
	st.expenses[expense.ID] = row
	return nil
}

func (r *expenseRepo) Delete(_ context.Context, id string) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	if _, ok := st.expenses[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(st.expenses, id)
	return nil
}

func (r *expenseRepo) GetByID(_ context.Context, id string) (*domain.Expense, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	e, ok := r.s.db().expenses[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &e, nil
}

func (r *expenseRepo) List(_ context.Context, filter repository.WorkFilter) ([]domain.Expense, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	var result []domain.Expense
	for _, e := range r.s.db().expenses {
		if matchesWork(filter, e.UserID, e.TicketID, e.Date, e.Billable) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}
