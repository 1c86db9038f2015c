package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type lookupRepo struct {
	s *Store
}

func (r *lookupRepo) ListStatuses(_ context.Context) ([]domain.TicketStatus, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	result := make([]domain.TicketStatus, 0, len(r.s.db().statuses))
	for _, s := range r.s.db().statuses {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *lookupRepo) GetStatus(_ context.Context, id string) (*domain.TicketStatus, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	s, ok := r.s.db().statuses[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &s, nil
}

func (r *lookupRepo) DefaultStatus(ctx context.Context) (*domain.TicketStatus, error) {
	all, _ := r.ListStatuses(ctx)
	for _, s := range all {
		if s.IsDefault {
			return &s, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *lookupRepo) CreateStatus(_ context.Context, status *domain.TicketStatus) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	for _, existing := range st.statuses {
		if existing.Name == status.Name {
			return apperrors.ErrDuplicate
		}
	}
	status.ID = newID()
	st.statuses[status.ID] = *status
	return nil
}

func (r *lookupRepo) UpdateStatus(_ context.Context, status *domain.TicketStatus) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	if _, ok := st.statuses[status.ID]; !ok {
		return apperrors.ErrNotFound
	}
	for id, existing := range st.statuses {
		if id != status.ID && existing.Name == status.Name {
			return apperrors.ErrDuplicate
		}
	}
	st.statuses[status.ID] = *status
	return nil
}

func (r *lookupRepo) ClearDefaultStatus(_ context.Context, exceptID string) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	for id, s := range st.statuses {
		if id != exceptID && s.IsDefault {
			s.IsDefault = false
			st.statuses[id] = s
		}
	}
	return nil
}

func (r *lookupRepo) ListPriorities(_ context.Context) ([]domain.TicketPriority, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	result := make([]domain.TicketPriority, 0, len(r.s.db().priorities))
	for _, p := range r.s.db().priorities {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].SLAResolutionTime, result[j].SLAResolutionTime
		switch {
		case a == nil && b == nil:
			return result[i].Name < result[j].Name
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a < *b
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (r *lookupRepo) GetPriority(_ context.Context, id string) (*domain.TicketPriority, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	p, ok := r.s.db().priorities[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (r *lookupRepo) DefaultPriority(ctx context.Context) (*domain.TicketPriority, error) {
	all, _ := r.ListPriorities(ctx)
	for _, p := range all {
		if p.IsDefault {
			return &p, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *lookupRepo) CreatePriority(_ context.Context, priority *domain.TicketPriority) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	for _, existing := range st.priorities {
		if existing.Name == priority.Name {
			return apperrors.ErrDuplicate
		}
	}
	priority.ID = newID()
	st.priorities[priority.ID] = *priority
	return nil
}

func (r *lookupRepo) UpdatePriority(_ context.Context, priority *domain.TicketPriority) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	if _, ok := st.priorities[priority.ID]; !ok {
		return apperrors.ErrNotFound
	}
	for id, existing := range st.priorities {
		if id != priority.ID && existing.Name == priority.Name {
			return apperrors.ErrDuplicate
		}
	}
	st.priorities[priority.ID] = *priority
	return nil
}

func (r *lookupRepo) ClearDefaultPriority(_ context.Context, exceptID string) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	for id, p := range st.priorities {
		if id != exceptID && p.IsDefault {
			p.IsDefault = false
			st.priorities[id] = p
		}
	}
	return nil
}

func (r *lookupRepo) ListTypes(_ context.Context) ([]domain.TicketType, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	result := make([]domain.TicketType, 0, len(r.s.db().types))
	for _, t := range r.s.db().types {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *lookupRepo) GetType(_ context.Context, id string) (*domain.TicketType, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	t, ok := r.s.db().types[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &t, nil
}

func (r *lookupRepo) DefaultType(ctx context.Context) (*domain.TicketType, error) {
	all, _ := r.ListTypes(ctx)
	for _, t := range all {
		if t.IsDefault {
			return &t, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *lookupRepo) CreateType(_ context.Context, ticketType *domain.TicketType) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	for _, existing := range st.types {
		if existing.Name == ticketType.Name {
			return apperrors.ErrDuplicate
		}
	}
	ticketType.ID = newID()
	st.types[ticketType.ID] = *ticketType
	return nil
}

func (r *lookupRepo) UpdateType(_ context.Context, ticketType *domain.TicketType) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	if _, ok := st.types[ticketType.ID]; !ok {
		return apperrors.ErrNotFound
	}
	for id, existing := range st.types {
		if id != ticketType.ID && existing.Name == ticketType.Name {
			return apperrors.ErrDuplicate
		}
	}
	st.types[ticketType.ID] = *ticketType
	return nil
}

func (r *lookupRepo) ClearDefaultType(_ context.Context, exceptID string) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	for id, t := range st.types {
		if id != exceptID && t.IsDefault {
			t.IsDefault = false
			st.types[id] = t
		}
	}
	return nil
}
