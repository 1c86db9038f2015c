package dto

import "time"

// CreateAssetRequest payload. Dates accept YYYY-MM-DD.
type CreateAssetRequest struct {
	Name           string  `json:"name" validate:"required,max=128"`
	AssetType      string  `json:"asset_type" validate:"required,oneof=computer server network peripheral mobile other"`
	SerialNumber   string  `json:"serial_number" validate:"max=128"`
	PurchaseDate   string  `json:"purchase_date"`
	WarrantyExpiry string  `json:"warranty_expiry"`
	Notes          string  `json:"notes" validate:"max=2000"`
	Status         *string `json:"status" validate:"omitempty,oneof=in_use available maintenance retired"`
	AssignedToID   *string `json:"assigned_to_id"`
}

// UpdateAssetRequest payload. An empty string clears a date or the assignee.
type UpdateAssetRequest struct {
	Name           *string `json:"name" validate:"omitempty,max=128"`
	AssetType      *string `json:"asset_type" validate:"omitempty,oneof=computer server network peripheral mobile other"`
	SerialNumber   *string `json:"serial_number" validate:"omitempty,max=128"`
	PurchaseDate   *string `json:"purchase_date"`
	WarrantyExpiry *string `json:"warranty_expiry"`
	Notes          *string `json:"notes" validate:"omitempty,max=2000"`
	Status         *string `json:"status" validate:"omitempty,oneof=in_use available maintenance retired"`
	AssignedToID   *string `json:"assigned_to_id"`
}

// AssignAssetRequest payload. A missing or empty user_id returns the asset to the pool.
type AssignAssetRequest struct {
	UserID *string `json:"user_id"`
}

// LinkAssetRequest payload.
type LinkAssetRequest struct {
	AssetID string `json:"asset_id" validate:"required"`
}

// AssetResponse represents an asset.
type AssetResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	AssetType      string    `json:"asset_type"`
	SerialNumber   string    `json:"serial_number"`
	PurchaseDate   *string   `json:"purchase_date"`
	WarrantyExpiry *string   `json:"warranty_expiry"`
	Notes          string    `json:"notes"`
	Status         string    `json:"status"`
	AssignedToID   *string   `json:"assigned_to_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AssetSummaryResponse counts the inventory.
type AssetSummaryResponse struct {
	Total            int             `json:"total"`
	InUse            int             `json:"in_use"`
	Available        int             `json:"available"`
	Maintenance      int             `json:"maintenance"`
	Retired          int             `json:"retired"`
	ExpiringWarranty []AssetResponse `json:"expiring_warranty"`
}

// AssetListResponse is a filtered asset list with inventory counts.
type AssetListResponse struct {
	Items   []AssetResponse      `json:"items"`
	Summary AssetSummaryResponse `json:"summary"`
}

// AssetDetailResponse is an asset with its tickets.
type AssetDetailResponse struct {
	AssetResponse
	Tickets []TicketResponse `json:"tickets"`
}
