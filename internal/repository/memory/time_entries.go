package memory

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type timeEntryRepo struct {
	s *Store
}

func (r *timeEntryRepo) Create(_ context.Context, entry *domain.TimeEntry) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	if _, ok := st.tickets[entry.TicketID]; !ok {
		return apperrors.ErrNotFound
	}
	if entry.EndTime == nil && st.running(entry.TicketID, entry.UserID) != nil {
		return apperrors.ErrDuplicate
	}
	entry.ID = newID()
	st.timeEntries[entry.ID] = *entry
	return nil
}

func (r *timeEntryRepo) Update(_ context.Context, entry *domain.TimeEntry) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	row, ok := st.timeEntries[entry.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	row.StartTime = entry.StartTime
	row.EndTime = entry.EndTime
	row.DurationSeconds = entry.DurationSeconds
	row.Notes = entry.Notes
	row.Billable = entry.Billable
	st.timeEntries[entry.ID] = row
	return nil
}

func (r *timeEntryRepo) Delete(_ context.Context, id string) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	if _, ok := st.timeEntries[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(st.timeEntries, id)
	return nil
}

func (r *timeEntryRepo) GetByID(_ context.Context, id string) (*domain.TimeEntry, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	e, ok := r.s.db().timeEntries[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &e, nil
}

func (r *timeEntryRepo) GetRunning(_ context.Context, ticketID, userID string) (*domain.TimeEntry, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	if e := r.s.db().running(ticketID, userID); e != nil {
		return e, nil
	}
	return nil, apperrors.ErrNotFound
}

func (st *state) running(ticketID, userID string) *domain.TimeEntry {
	for _, e := range st.timeEntries {
		if e.TicketID == ticketID && e.UserID == userID && e.EndTime == nil {
			return &e
		}
	}
	return nil
}

func (r *timeEntryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TimeEntry, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	var result []domain.TimeEntry
	for _, e := range r.s.db().timeEntries {
		if e.TicketID == ticketID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.After(result[j].StartTime) })
	return result, nil
}

func (r *timeEntryRepo) List(_ context.Context, filter repository.WorkFilter) ([]domain.TimeEntry, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	var result []domain.TimeEntry
	for _, e := range r.s.db().timeEntries {
		if matchesWork(filter, e.UserID, e.TicketID, e.StartTime, e.Billable) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.After(result[j].StartTime) })
	return result, nil
}

func matchesWork(f repository.WorkFilter, userID, ticketID string, at time.Time, billable bool) bool {
	switch {
	case f.UserID != nil && *f.UserID != userID:
		return false
	case f.TicketID != nil && *f.TicketID != ticketID:
		return false
	case f.From != nil && at.Before(*f.From):
		return false
	case f.To != nil && !at.Before(*f.To):
		return false
	case f.BillableOnly && !billable:
		return false
	}
	return true
}
