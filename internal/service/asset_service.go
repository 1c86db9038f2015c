package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const warrantyWindow = 30 * 24 * time.Hour

// AssetService manages tracked equipment and its links to tickets.
type AssetService struct {
	base
}

// NewAssetService constructs the service.
func NewAssetService(deps Dependencies) *AssetService {
	return &AssetService{base: newBase(deps)}
}

// AssetInput creates or edits an asset; nil leaves a field unchanged on update.
type AssetInput struct {
	Name           *string
	Type           *string
	SerialNumber   *string
	PurchaseDate   *time.Time
	WarrantyExpiry *time.Time
	Notes          *string
	Status         *string
	AssignedToID   *string
	// ClearAssignee and the Clear dates remove the value instead of leaving it unchanged.
	ClearAssignee       bool
	ClearPurchaseDate   bool
	ClearWarrantyExpiry bool
}

// AssetSummary counts the whole inventory regardless of list filters.
type AssetSummary struct {
	Total            int
	InUse            int
	Available        int
	Maintenance      int
	Retired          int
	ExpiringWarranty []domain.Asset
}

// AssetList is a filtered page of assets with inventory counts.
type AssetList struct {
	Items   []domain.Asset
	Summary AssetSummary
}

// AssetDetail is an asset with the tickets that reference it.
type AssetDetail struct {
	Asset   *domain.Asset
	Tickets []TicketView
}

// ListAssets filters the inventory and summarises all of it.
func (s *AssetService) ListAssets(ctx context.Context, viewer *domain.User, filter repository.AssetFilter) (*AssetList, error) {
	if err := s.authorize(viewer, auth.ResourceAsset, auth.ActionRead); err != nil {
		return nil, err
	}
	items, err := s.store.Assets().List(ctx, filter)
	if err != nil {
		return nil, s.storageError("list assets", err)
	}
	all, err := s.store.Assets().List(ctx, repository.AssetFilter{})
	if err != nil {
		return nil, s.storageError("list assets", err)
	}
	return &AssetList{Items: items, Summary: summarizeAssets(all, s.now())}, nil
}

func summarizeAssets(assets []domain.Asset, now time.Time) AssetSummary {
	summary := AssetSummary{Total: len(assets)}
	for _, a := range assets {
		switch a.Status {
		case domain.AssetInUse:
			summary.InUse++
		case domain.AssetAvailable:
			summary.Available++
		case domain.AssetMaintenance:
			summary.Maintenance++
		case domain.AssetRetired:
			summary.Retired++
		}
		if a.WarrantyExpiresWithin(now, warrantyWindow) {
			summary.ExpiringWarranty = append(summary.ExpiringWarranty, a)
		}
	}
	return summary
}

// GetAsset returns the asset and its linked tickets.
func (s *AssetService) GetAsset(ctx context.Context, id string, viewer *domain.User) (*AssetDetail, error) {
	if err := s.authorize(viewer, auth.ResourceAsset, auth.ActionRead); err != nil {
		return nil, err
	}
	asset, err := s.loadAsset(ctx, s.store.Assets(), id)
	if err != nil {
		return nil, err
	}
	ticketIDs, err := s.store.Assets().ListTicketIDs(ctx, id)
	if err != nil {
		return nil, s.storageError("list asset tickets", err)
	}
	now := s.now()
	detail := &AssetDetail{Asset: asset}
	for _, ticketID := range ticketIDs {
		ticket, err := s.loadTicket(ctx, s.store.Tickets(), ticketID, false)
		if err != nil {
			if apperrors.HasCode(err, apperrors.CodeNotFound) {
				continue
			}
			return nil, err
		}
		detail.Tickets = append(detail.Tickets, s.view(ticket, now))
	}
	return detail, nil
}

// CreateAsset adds an asset. Status defaults to in_use when an assignee is given and available otherwise.
func (s *AssetService) CreateAsset(ctx context.Context, actor *domain.User, in AssetInput) (*domain.Asset, error) {
	if err := s.authorize(actor, auth.ResourceAsset, auth.ActionCreate); err != nil {
		return nil, err
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	if in.Type == nil {
		return nil, apperrors.NewValidationError("asset type is required", map[string]any{"field": "asset_type"})
	}
	now := s.now()
	asset := &domain.Asset{Status: domain.AssetAvailable, CreatedAt: now, UpdatedAt: now}
	if trimmedPtr(in.AssignedToID) != nil && in.Status == nil {
		asset.Status = domain.AssetInUse
	}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := s.applyAsset(ctx, tx, asset, in); err != nil {
			return err
		}
		if err := tx.Assets().Create(ctx, asset); err != nil {
			return s.storageError("create asset", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.passThrough("create asset", err)
	}
	s.logger.Info("asset created", zap.String("asset_id", asset.ID), zap.String("type", string(asset.Type)))
	return asset, nil
}

// UpdateAsset edits an asset.
func (s *AssetService) UpdateAsset(ctx context.Context, id string, actor *domain.User, in AssetInput) (*domain.Asset, error) {
	if err := s.authorize(actor, auth.ResourceAsset, auth.ActionUpdate); err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	var asset *domain.Asset

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		if asset, err = s.loadAsset(ctx, tx.Assets(), id); err != nil {
			return err
		}
		if err := s.applyAsset(ctx, tx, asset, in); err != nil {
			return err
		}
		asset.UpdatedAt = s.now()
		if err := tx.Assets().Update(ctx, asset); err != nil {
			return s.storageError("update asset", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.passThrough("update asset", err)
	}
	return asset, nil
}

// AssignAsset hands the asset to a user and marks it in use, or returns it to the pool when
// userID is nil or empty.
func (s *AssetService) AssignAsset(ctx context.Context, id string, userID *string, actor *domain.User) (*domain.Asset, error) {
	if err := s.authorize(actor, auth.ResourceAsset, auth.ActionUpdate); err != nil {
		return nil, err
	}
	userID = trimmedPtr(userID)
	var asset *domain.Asset

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		if asset, err = s.loadAsset(ctx, tx.Assets(), id); err != nil {
			return err
		}
		if userID == nil {
			asset.AssignedToID = nil
			asset.Status = domain.AssetAvailable
		} else {
			if err := s.checkHolder(ctx, tx.Users(), *userID); err != nil {
				return err
			}
			asset.AssignedToID = userID
			asset.Status = domain.AssetInUse
		}
		asset.UpdatedAt = s.now()
		if err := tx.Assets().Update(ctx, asset); err != nil {
			return s.storageError("assign asset", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.passThrough("assign asset", err)
	}
	return asset, nil
}

// DeleteAsset removes an asset that no ticket references.
func (s *AssetService) DeleteAsset(ctx context.Context, id string, actor *domain.User) error {
	if err := s.authorize(actor, auth.ResourceAsset, auth.ActionDelete); err != nil {
		return err
	}
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := s.loadAsset(ctx, tx.Assets(), id); err != nil {
			return err
		}
		linked, err := tx.Assets().ListTicketIDs(ctx, id)
		if err != nil {
			return s.storageError("list asset tickets", err)
		}
		if len(linked) > 0 {
			return apperrors.NewConflict("asset is linked to tickets", map[string]any{"asset_id": id, "tickets": len(linked)})
		}
		if err := tx.Assets().Delete(ctx, id); err != nil {
			if apperrors.IsReferenced(err) {
				return apperrors.NewConflict("asset is linked to tickets", map[string]any{"asset_id": id})
			}
			return s.storageError("delete asset", err)
		}
		return nil
	})
	return s.passThrough("delete asset", err)
}

// LinkTicket records that the ticket concerns the asset.
func (s *AssetService) LinkTicket(ctx context.Context, ticketID, assetID string, actor *domain.User) error {
	if err := s.authorize(actor, auth.ResourceAsset, auth.ActionUpdate); err != nil {
		return err
	}
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := s.loadTicket(ctx, tx.Tickets(), ticketID, false); err != nil {
			return err
		}
		if _, err := s.loadAsset(ctx, tx.Assets(), assetID); err != nil {
			return err
		}
		if err := tx.Assets().LinkTicket(ctx, ticketID, assetID); err != nil {
			if apperrors.IsDuplicate(err) {
				return apperrors.NewConflict("asset already linked to ticket", map[string]any{"ticket_id": ticketID, "asset_id": assetID})
			}
			return s.storageError("link asset", err)
		}
		return nil
	})
	return s.passThrough("link asset", err)
}

// UnlinkTicket removes the link between the ticket and the asset.
func (s *AssetService) UnlinkTicket(ctx context.Context, ticketID, assetID string, actor *domain.User) error {
	if err := s.authorize(actor, auth.ResourceAsset, auth.ActionUpdate); err != nil {
		return err
	}
	if err := s.store.Assets().UnlinkTicket(ctx, ticketID, assetID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("asset link", map[string]any{"ticket_id": ticketID, "asset_id": assetID})
		}
		return s.storageError("unlink asset", err)
	}
	return nil
}

// TicketAssets lists the assets linked to a ticket.
func (s *AssetService) TicketAssets(ctx context.Context, ticketID string, viewer *domain.User) ([]domain.Asset, error) {
	if err := s.authorize(viewer, auth.ResourceAsset, auth.ActionRead); err != nil {
		return nil, err
	}
	if _, err := s.loadTicket(ctx, s.store.Tickets(), ticketID, false); err != nil {
		return nil, err
	}
	assets, err := s.store.Assets().ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, s.storageError("list ticket assets", err)
	}
	return assets, nil
}

func (s *AssetService) applyAsset(ctx context.Context, tx repository.Store, asset *domain.Asset, in AssetInput) error {
	if in.Name != nil {
		asset.Name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		t, ok := domain.ParseAssetType(*in.Type)
		if !ok {
			return apperrors.NewValidationError("unknown asset type", map[string]any{"field": "asset_type", "value": *in.Type})
		}
		asset.Type = t
	}
	if in.Status != nil {
		st, ok := domain.ParseAssetStatus(*in.Status)
		if !ok {
			return apperrors.NewValidationError("unknown asset status", map[string]any{"field": "status", "value": *in.Status})
		}
		asset.Status = st
	}
	applyString(&asset.SerialNumber, in.SerialNumber)
	applyString(&asset.Notes, in.Notes)
	asset.PurchaseDate = applyDate(asset.PurchaseDate, in.PurchaseDate, in.ClearPurchaseDate)
	asset.WarrantyExpiry = applyDate(asset.WarrantyExpiry, in.WarrantyExpiry, in.ClearWarrantyExpiry)

	switch {
	case in.ClearAssignee:
		asset.AssignedToID = nil
	case trimmedPtr(in.AssignedToID) != nil:
		holder := trimmedPtr(in.AssignedToID)
		if err := s.checkHolder(ctx, tx.Users(), *holder); err != nil {
			return err
		}
		asset.AssignedToID = holder
	}
	return nil
}

func applyDate(current, next *time.Time, clear bool) *time.Time {
	if clear {
		return nil
	}
	if next == nil {
		return current
	}
	day := next.UTC().Truncate(24 * time.Hour)
	return &day
}

// checkHolder accepts any active account.
func (s *AssetService) checkHolder(ctx context.Context, users repository.UserRepository, userID string) error {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewValidationError("assignee does not exist", map[string]any{"field": "assigned_to_id", "value": userID})
		}
		return s.storageError("load asset holder", err)
	}
	if !user.IsActive {
		return apperrors.NewValidationError("assignee is inactive", map[string]any{"field": "assigned_to_id", "value": userID})
	}
	return nil
}

func (s *AssetService) loadAsset(ctx context.Context, repo repository.AssetRepository, id string) (*domain.Asset, error) {
	asset, err := repo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("asset", map[string]any{"asset_id": id})
		}
		return nil, s.storageError("load asset", err)
	}
	return asset, nil
}
