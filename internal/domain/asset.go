package domain

import (
	"strings"
	"time"
)

// AssetType classifies tracked equipment.
type AssetType string

const (
	AssetComputer   AssetType = "computer"
	AssetServer     AssetType = "server"
	AssetNetwork    AssetType = "network"
	AssetPeripheral AssetType = "peripheral"
	AssetMobile     AssetType = "mobile"
	AssetOther      AssetType = "other"
)

// AssetStatus is the lifecycle state of an asset.
type AssetStatus string

const (
	AssetInUse       AssetStatus = "in_use"
	AssetAvailable   AssetStatus = "available"
	AssetMaintenance AssetStatus = "maintenance"
	AssetRetired     AssetStatus = "retired"
)

// ParseAssetType accepts the lowercase type names.
func ParseAssetType(v string) (AssetType, bool) {
	t := AssetType(strings.ToLower(strings.TrimSpace(v)))
	switch t {
	case AssetComputer, AssetServer, AssetNetwork, AssetPeripheral, AssetMobile, AssetOther:
		return t, true
	}
	return "", false
}

// ParseAssetStatus accepts the lowercase status names.
func ParseAssetStatus(v string) (AssetStatus, bool) {
	s := AssetStatus(strings.ToLower(strings.TrimSpace(v)))
	switch s {
	case AssetInUse, AssetAvailable, AssetMaintenance, AssetRetired:
		return s, true
	}
	return "", false
}

// Asset is a piece of equipment that tickets can reference.
type Asset struct {
	ID             string
	Name           string
	Type           AssetType
	SerialNumber   string
	PurchaseDate   *time.Time
	WarrantyExpiry *time.Time
	Notes          string
	Status         AssetStatus
	AssignedToID   *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WarrantyExpiresWithin reports whether the warranty ends between today and today+window,
// both days included.
func (a *Asset) WarrantyExpiresWithin(now time.Time, window time.Duration) bool {
	if a.WarrantyExpiry == nil {
		return false
	}
	today := now.UTC().Truncate(24 * time.Hour)
	expiry := a.WarrantyExpiry.UTC().Truncate(24 * time.Hour)
	return !expiry.Before(today) && !expiry.After(today.Add(window))
}
