package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type commentRepo struct {
	s *Store
}

func (r *commentRepo) Create(_ context.Context, comment *domain.TicketComment) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	if _, ok := st.tickets[comment.TicketID]; !ok {
		return apperrors.ErrNotFound
	}
	if comment.ParentID != nil {
		if _, ok := st.comments[*comment.ParentID]; !ok {
			return apperrors.ErrNotFound
		}
	}
	comment.ID = newID()
	st.comments[comment.ID] = *comment
	st.commentSeq[comment.ID] = st.next()
	return nil
}

func (r *commentRepo) GetByID(_ context.Context, id string) (*domain.TicketComment, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	c, ok := r.s.db().comments[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (r *commentRepo) ListByTicket(_ context.Context, ticketID string, includeInternal bool) ([]domain.TicketComment, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	var result []domain.TicketComment
	for _, c := range st.comments {
		if c.TicketID != ticketID || (c.IsInternal && !includeInternal) {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return st.commentSeq[result[i].ID] < st.commentSeq[result[j].ID]
	})
	return result, nil
}
