package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AssetsHandler serves asset inventory endpoints.
type AssetsHandler struct {
	assets *service.AssetService
}

// NewAssetsHandler constructs handler.
func NewAssetsHandler(assets *service.AssetService) *AssetsHandler {
	return &AssetsHandler{assets: assets}
}

// List GET /assets.
func (h *AssetsHandler) List(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	filter, err := parseAssetQuery(c)
	if err != nil {
		return err
	}
	list, err := h.assets.ListAssets(c.UserContext(), user, filter)
	if err != nil {
		return err
	}
	resp := dto.AssetListResponse{
		Items: assetResponses(list.Items),
		Summary: dto.AssetSummaryResponse{
			Total:            list.Summary.Total,
			InUse:            list.Summary.InUse,
			Available:        list.Summary.Available,
			Maintenance:      list.Summary.Maintenance,
			Retired:          list.Summary.Retired,
			ExpiringWarranty: assetResponses(list.Summary.ExpiringWarranty),
		},
	}
	return data(c, http.StatusOK, resp)
}

// Get GET /assets/:id.
func (h *AssetsHandler) Get(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	detail, err := h.assets.GetAsset(c.UserContext(), c.Params("id"), user)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.AssetDetailResponse{
		AssetResponse: assetResponse(detail.Asset),
		Tickets:       ticketResponses(detail.Tickets),
	})
}

// Create POST /assets.
func (h *AssetsHandler) Create(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateAssetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	in := service.AssetInput{
		Name:         &req.Name,
		Type:         &req.AssetType,
		SerialNumber: &req.SerialNumber,
		Notes:        &req.Notes,
		Status:       req.Status,
		AssignedToID: req.AssignedToID,
	}
	if in.PurchaseDate, err = parseDate("purchase_date", req.PurchaseDate); err != nil {
		return err
	}
	if in.WarrantyExpiry, err = parseDate("warranty_expiry", req.WarrantyExpiry); err != nil {
		return err
	}
	asset, err := h.assets.CreateAsset(c.UserContext(), user, in)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, assetResponse(asset))
}

// Update PATCH /assets/:id.
func (h *AssetsHandler) Update(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateAssetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	in := service.AssetInput{
		Name:         req.Name,
		Type:         req.AssetType,
		SerialNumber: req.SerialNumber,
		Notes:        req.Notes,
		Status:       req.Status,
		AssignedToID: req.AssignedToID,
	}
	if req.AssignedToID != nil && strings.TrimSpace(*req.AssignedToID) == "" {
		in.ClearAssignee = true
	}
	if req.PurchaseDate != nil {
		if in.PurchaseDate, err = parseDate("purchase_date", *req.PurchaseDate); err != nil {
			return err
		}
		in.ClearPurchaseDate = in.PurchaseDate == nil
	}
	if req.WarrantyExpiry != nil {
		if in.WarrantyExpiry, err = parseDate("warranty_expiry", *req.WarrantyExpiry); err != nil {
			return err
		}
		in.ClearWarrantyExpiry = in.WarrantyExpiry == nil
	}
	asset, err := h.assets.UpdateAsset(c.UserContext(), c.Params("id"), user, in)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, assetResponse(asset))
}

// Delete DELETE /assets/:id.
func (h *AssetsHandler) Delete(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	if err := h.assets.DeleteAsset(c.UserContext(), c.Params("id"), user); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Assign POST /assets/:id/assign.
func (h *AssetsHandler) Assign(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.AssignAssetRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	asset, err := h.assets.AssignAsset(c.UserContext(), c.Params("id"), req.UserID, user)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, assetResponse(asset))
}

// TicketAssets GET /tickets/:id/assets.
func (h *AssetsHandler) TicketAssets(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	assets, err := h.assets.TicketAssets(c.UserContext(), c.Params("id"), user)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, assetResponses(assets))
}

// Link POST /tickets/:id/assets.
func (h *AssetsHandler) Link(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.LinkAssetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.assets.LinkTicket(c.UserContext(), c.Params("id"), req.AssetID, user); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Unlink DELETE /tickets/:id/assets/:assetId.
func (h *AssetsHandler) Unlink(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	if err := h.assets.UnlinkTicket(c.UserContext(), c.Params("id"), c.Params("assetId"), user); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseAssetQuery(c *fiber.Ctx) (repository.AssetFilter, error) {
	filter := repository.AssetFilter{
		AssignedToID: optionalQuery(c, "assigned_to"),
		SearchTerm:   optionalQuery(c, "q"),
	}
	if v := optionalQuery(c, "asset_type"); v != nil {
		t, ok := domain.ParseAssetType(*v)
		if !ok {
			return filter, apperrors.NewValidationError("unknown asset type", map[string]any{"field": "asset_type", "value": *v})
		}
		filter.Type = &t
	}
	if v := optionalQuery(c, "status"); v != nil {
		st, ok := domain.ParseAssetStatus(*v)
		if !ok {
			return filter, apperrors.NewValidationError("unknown asset status", map[string]any{"field": "status", "value": *v})
		}
		filter.Status = &st
	}
	return filter, nil
}
