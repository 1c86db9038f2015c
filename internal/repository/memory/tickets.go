package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type ticketRepo struct {
	s *Store
}

func (r *ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	if !st.references(ticket) {
		return apperrors.ErrNotFound
	}
	st.nextNumber++
	ticket.ID = newID()
	ticket.Number = st.nextNumber
	ticket.UpdatedAt = ticket.CreatedAt
	row := *ticket
	row.Status = nil
	st.tickets[ticket.ID] = row
	return nil
}

// references mirrors the foreign keys on the tickets table.
func (st *state) references(t *domain.Ticket) bool {
	_, okStatus := st.statuses[t.StatusID]
	_, okPriority := st.priorities[t.PriorityID]
	_, okType := st.types[t.TypeID]
	_, okCreator := st.users[t.CreatorID]
	if t.AssigneeID != nil {
		if _, ok := st.users[*t.AssigneeID]; !ok {
			return false
		}
	}
	return okStatus && okPriority && okType && okCreator
}

func (r *ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	row, ok := st.tickets[ticket.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	row.Subject = ticket.Subject
	row.Description = ticket.Description
	row.RequesterName = ticket.RequesterName
	row.RequesterEmail = ticket.RequesterEmail
	row.PriorityID = ticket.PriorityID
	row.TypeID = ticket.TypeID
	row.DueDate = ticket.DueDate
	row.UpdatedAt = ticket.UpdatedAt
	st.tickets[ticket.ID] = row
	return nil
}

func (r *ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	return r.get(id)
}

// GetForUpdate needs no row lock: every transaction already holds the store mutex.
func (r *ticketRepo) GetForUpdate(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	return r.get(id)
}

func (r *ticketRepo) get(id string) (*domain.Ticket, error) {
	st := r.s.db()
	row, ok := st.tickets[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return st.withStatus(row), nil
}

func (st *state) withStatus(row domain.Ticket) *domain.Ticket {
	if status, ok := st.statuses[row.StatusID]; ok {
		row.Status = &status
	}
	return &row
}

func (r *ticketRepo) UpdateStatus(_ context.Context, id, statusID string, at time.Time) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	row, ok := st.tickets[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if _, ok := st.statuses[statusID]; !ok {
		return apperrors.ErrNotFound
	}
	row.StatusID = statusID
	row.UpdatedAt = at
	st.tickets[id] = row
	return nil
}

func (r *ticketRepo) Assign(_ context.Context, id string, assigneeID *string, at time.Time) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	row, ok := st.tickets[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	row.AssigneeID = assigneeID
	row.UpdatedAt = at
	st.tickets[id] = row
	return nil
}

func (r *ticketRepo) Delete(_ context.Context, id string) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	if _, ok := st.tickets[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(st.tickets, id)
	for cid, c := range st.comments {
		if c.TicketID == id {
			delete(st.comments, cid)
			delete(st.commentSeq, cid)
		}
	}
	for eid, e := range st.timeEntries {
		if e.TicketID == id {
			delete(st.timeEntries, eid)
		}
	}
	for xid, x := range st.expenses {
		if x.TicketID == id {
			delete(st.expenses, xid)
		}
	}
	for link := range st.ticketAssets {
		if link.ticketID == id {
			delete(st.ticketAssets, link)
		}
	}
	return nil
}

func (r *ticketRepo) MarkResolved(_ context.Context, id string, at time.Time) (bool, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	row, ok := st.tickets[id]
	if !ok || row.ResolvedAt != nil {
		return false, nil
	}
	row.ResolvedAt = &at
	row.SLAResolutionMet = row.SLAResolutionDue != nil && !at.After(*row.SLAResolutionDue)
	st.tickets[id] = row
	return true, nil
}

func (r *ticketRepo) MarkFirstResponse(_ context.Context, id string, at time.Time) (bool, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	row, ok := st.tickets[id]
	if !ok || row.FirstResponseAt != nil {
		return false, nil
	}
	row.FirstResponseAt = &at
	row.SLAResponseMet = row.SLAResponseDue != nil && !at.After(*row.SLAResponseDue)
	st.tickets[id] = row
	return true, nil
}

func (r *ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	matched := r.filter(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *ticketRepo) Count(_ context.Context, filter repository.TicketFilter) (int, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	return len(r.filter(filter)), nil
}

func (r *ticketRepo) ListAll(_ context.Context) ([]domain.Ticket, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	return r.filter(repository.TicketFilter{}), nil
}

func (r *ticketRepo) filter(filter repository.TicketFilter) []domain.Ticket {
	st := r.s.db()
	search := ""
	if filter.SearchTerm != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
	}

	var result []domain.Ticket
	for _, row := range st.tickets {
		if filter.StatusID != nil && row.StatusID != *filter.StatusID {
			continue
		}
		if filter.PriorityID != nil && row.PriorityID != *filter.PriorityID {
			continue
		}
		if filter.Unassigned && row.AssigneeID != nil {
			continue
		}
		if !filter.Unassigned && filter.AssigneeID != nil && (row.AssigneeID == nil || *row.AssigneeID != *filter.AssigneeID) {
			continue
		}
		if filter.OwnerID != nil && row.CreatorID != *filter.OwnerID &&
			(filter.OwnerEmail == "" || row.RequesterEmail != filter.OwnerEmail) {
			continue
		}
		if filter.CreatedFrom != nil && row.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && !row.CreatedAt.Before(*filter.CreatedTo) {
			continue
		}
		if search != "" && !matchesSearch(row, search) {
			continue
		}
		result = append(result, *st.withStatus(row))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].Number > result[j].Number
	})
	return result
}

func matchesSearch(t domain.Ticket, term string) bool {
	for _, field := range []string{t.Subject, t.Description, t.RequesterName, t.RequesterEmail} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
