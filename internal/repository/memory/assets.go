package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type assetLink struct {
	ticketID string
	assetID  string
}

type assetRepo struct {
	s *Store
}

func (r *assetRepo) Create(_ context.Context, asset *domain.Asset) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	if asset.AssignedToID != nil {
		if _, ok := st.users[*asset.AssignedToID]; !ok {
			return apperrors.ErrNotFound
		}
	}
	asset.ID = newID()
	asset.UpdatedAt = asset.CreatedAt
	st.assets[asset.ID] = *asset
	return nil
}

func (r *assetRepo) Update(_ context.Context, asset *domain.Asset) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	row, ok := st.assets[asset.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if asset.AssignedToID != nil {
		if _, ok := st.users[*asset.AssignedToID]; !ok {
			return apperrors.ErrNotFound
		}
	}
	updated := *asset
	updated.CreatedAt = row.CreatedAt
	st.assets[asset.ID] = updated
	return nil
}

func (r *assetRepo) Delete(_ context.Context, id string) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	if _, ok := st.assets[id]; !ok {
		return apperrors.ErrNotFound
	}
	for link := range st.ticketAssets {
		if link.assetID == id {
			return apperrors.ErrReferenced
		}
	}
	delete(st.assets, id)
	return nil
}

func (r *assetRepo) GetByID(_ context.Context, id string) (*domain.Asset, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	a, ok := r.s.db().assets[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &a, nil
}

func (r *assetRepo) List(_ context.Context, filter repository.AssetFilter) ([]domain.Asset, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	var result []domain.Asset
	for _, a := range r.s.db().assets {
		if matchesAsset(filter, a) {
			result = append(result, a)
		}
	}
	sortAssets(result)
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func matchesAsset(f repository.AssetFilter, a domain.Asset) bool {
	switch {
	case f.Type != nil && *f.Type != a.Type:
		return false
	case f.Status != nil && *f.Status != a.Status:
		return false
	case f.AssignedToID != nil && (a.AssignedToID == nil || *a.AssignedToID != *f.AssignedToID):
		return false
	}
	if f.SearchTerm == nil {
		return true
	}
	term := strings.ToLower(strings.TrimSpace(*f.SearchTerm))
	if term == "" {
		return true
	}
	for _, field := range []string{a.Name, a.SerialNumber, a.Notes} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func sortAssets(assets []domain.Asset) {
	sort.Slice(assets, func(i, j int) bool {
		if assets[i].Name != assets[j].Name {
			return assets[i].Name < assets[j].Name
		}
		return assets[i].ID < assets[j].ID
	})
}

func (r *assetRepo) LinkTicket(_ context.Context, ticketID, assetID string) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	_, okTicket := st.tickets[ticketID]
	_, okAsset := st.assets[assetID]
	if !okTicket || !okAsset {
		return apperrors.ErrNotFound
	}
	link := assetLink{ticketID: ticketID, assetID: assetID}
	if _, exists := st.ticketAssets[link]; exists {
		return apperrors.ErrDuplicate
	}
	st.ticketAssets[link] = struct{}{}
	return nil
}

func (r *assetRepo) UnlinkTicket(_ context.Context, ticketID, assetID string) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	link := assetLink{ticketID: ticketID, assetID: assetID}
	if _, ok := st.ticketAssets[link]; !ok {
		return apperrors.ErrNotFound
	}
	delete(st.ticketAssets, link)
	return nil
}

func (r *assetRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Asset, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	var result []domain.Asset
	for link := range st.ticketAssets {
		if link.ticketID == ticketID {
			result = append(result, st.assets[link.assetID])
		}
	}
	sortAssets(result)
	return result, nil
}

func (r *assetRepo) ListTicketIDs(_ context.Context, assetID string) ([]string, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	var ids []string
	for link := range r.s.db().ticketAssets {
		if link.assetID == assetID {
			ids = append(ids, link.ticketID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
