package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseAssetTypeAndStatus(t *testing.T) {
	typ, ok := ParseAssetType(" Server ")
	assert.True(t, ok)
	assert.Equal(t, AssetServer, typ)
	_, ok = ParseAssetType("toaster")
	assert.False(t, ok)

	status, ok := ParseAssetStatus("IN_USE")
	assert.True(t, ok)
	assert.Equal(t, AssetInUse, status)
	_, ok = ParseAssetStatus("lost")
	assert.False(t, ok)
}

func TestWarrantyExpiresWithin(t *testing.T) {
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	day := func(d int) *time.Time {
		v := time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	window := 30 * 24 * time.Hour

	assert.False(t, (&Asset{}).WarrantyExpiresWithin(now, window))
	assert.True(t, (&Asset{WarrantyExpiry: day(4)}).WarrantyExpiresWithin(now, window), "today counts")
	assert.True(t, (&Asset{WarrantyExpiry: day(34)}).WarrantyExpiresWithin(now, window), "day 30 counts")
	assert.False(t, (&Asset{WarrantyExpiry: day(35)}).WarrantyExpiresWithin(now, window))
	assert.False(t, (&Asset{WarrantyExpiry: day(3)}).WarrantyExpiresWithin(now, window), "already expired")
}

func TestCategoryAncestors(t *testing.T) {
	root, mid := "root", "mid"
	byID := map[string]KBCategory{
		"root": {ID: "root"},
		"mid":  {ID: "mid", ParentID: &root},
		"leaf": {ID: "leaf", ParentID: &mid},
	}
	assert.Equal(t, []string{"leaf", "mid", "root"}, CategoryAncestors(byID, "leaf"))

	loop := "b"
	back := "a"
	cyclic := map[string]KBCategory{
		"a": {ID: "a", ParentID: &loop},
		"b": {ID: "b", ParentID: &back},
	}
	assert.Equal(t, []string{"a", "b"}, CategoryAncestors(cyclic, "a"))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "$12.05", FormatCents(1205))
	assert.Equal(t, "-$0.50", FormatCents(-50))
	assert.Equal(t, "01:01:05", FormatDuration(3665))
}
