package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	if st.userConflict("", user) {
		return apperrors.ErrDuplicate
	}
	user.ID = newID()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now()
	}
	st.users[user.ID] = *user
	return nil
}

func (st *state) userConflict(selfID string, user *domain.User) bool {
	for id, existing := range st.users {
		if id == selfID {
			continue
		}
		if strings.EqualFold(existing.Username, user.Username) || strings.EqualFold(existing.Email, user.Email) {
			return true
		}
	}
	return false
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	row, ok := st.users[user.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if st.userConflict(user.ID, user) {
		return apperrors.ErrDuplicate
	}
	row.Username = user.Username
	row.Email = user.Email
	row.FirstName = user.FirstName
	row.LastName = user.LastName
	row.Role = user.Role
	row.IsActive = user.IsActive
	st.users[user.ID] = row
	return nil
}

func (r *userRepo) UpdatePassword(_ context.Context, id, hash string, forceChange bool) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	row, ok := st.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	row.PasswordHash = hash
	row.ForcePasswordChange = forceChange
	st.users[id] = row
	return nil
}

func (r *userRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	row, ok := st.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	row.LastLogin = &at
	st.users[id] = row
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	u, ok := r.s.db().users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByLogin(_ context.Context, login string) (*domain.User, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	for _, u := range r.s.db().users {
		if strings.EqualFold(u.Username, login) || strings.EqualFold(u.Email, login) {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *userRepo) List(_ context.Context) ([]domain.User, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	return r.collect(func(domain.User) bool { return true }), nil
}

func (r *userRepo) ListByRole(_ context.Context, roles ...domain.Role) ([]domain.User, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	return r.collect(func(u domain.User) bool {
		return u.IsActive && slices.Contains(roles, u.Role)
	}), nil
}

func (r *userRepo) collect(keep func(domain.User) bool) []domain.User {
	var result []domain.User
	for _, u := range r.s.db().users {
		if keep(u) {
			result = append(result, u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result
}
