package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestCreateAssetDefaultsStatusFromAssignee(t *testing.T) {
	f := newFixture(t)
	svc := NewAssetService(f.deps)
	ctx := context.Background()

	spare, err := svc.CreateAsset(ctx, f.agent, AssetInput{Name: strPtr(" Spare dock "), Type: strPtr("peripheral")})
	require.NoError(t, err)
	assert.Equal(t, "Spare dock", spare.Name)
	assert.Equal(t, domain.AssetAvailable, spare.Status)

	laptop, err := svc.CreateAsset(ctx, f.agent, AssetInput{Name: strPtr("Laptop"), Type: strPtr("Computer"), AssignedToID: &f.user.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.AssetInUse, laptop.Status)
	require.NotNil(t, laptop.AssignedToID)
	assert.Equal(t, f.user.ID, *laptop.AssignedToID)
}

func TestCreateAssetValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewAssetService(f.deps)
	ctx := context.Background()

	_, err := svc.CreateAsset(ctx, f.agent, AssetInput{Type: strPtr("server")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	_, err = svc.CreateAsset(ctx, f.agent, AssetInput{Name: strPtr("Toaster"), Type: strPtr("kitchen")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	_, err = svc.CreateAsset(ctx, f.agent, AssetInput{Name: strPtr("Phone"), Type: strPtr("mobile"), AssignedToID: strPtr("missing")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	_, err = svc.CreateAsset(ctx, f.user, AssetInput{Name: strPtr("Phone"), Type: strPtr("mobile")})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestAssignAssetTogglesStatus(t *testing.T) {
	f := newFixture(t)
	svc := NewAssetService(f.deps)
	ctx := context.Background()

	asset, err := svc.CreateAsset(ctx, f.agent, AssetInput{Name: strPtr("Monitor"), Type: strPtr("peripheral")})
	require.NoError(t, err)

	asset, err = svc.AssignAsset(ctx, asset.ID, &f.user.ID, f.agent)
	require.NoError(t, err)
	assert.Equal(t, domain.AssetInUse, asset.Status)

	asset, err = svc.AssignAsset(ctx, asset.ID, strPtr(" "), f.agent)
	require.NoError(t, err)
	assert.Equal(t, domain.AssetAvailable, asset.Status)
	assert.Nil(t, asset.AssignedToID)
}

func TestListAssetsSummarisesInventory(t *testing.T) {
	f := newFixture(t)
	svc := NewAssetService(f.deps)
	ctx := context.Background()

	soon := f.now.Add(10 * 24 * time.Hour)
	later := f.now.Add(90 * 24 * time.Hour)
	inputs := []AssetInput{
		{Name: strPtr("Core switch"), Type: strPtr("network"), Status: strPtr("in_use"), WarrantyExpiry: &soon},
		{Name: strPtr("Build server"), Type: strPtr("server"), Status: strPtr("maintenance"), WarrantyExpiry: &later},
		{Name: strPtr("Spare dock"), Type: strPtr("peripheral")},
	}
	for _, in := range inputs {
		_, err := svc.CreateAsset(ctx, f.agent, in)
		require.NoError(t, err)
	}

	server := domain.AssetServer
	list, err := svc.ListAssets(ctx, f.agent, repository.AssetFilter{Type: &server})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Build server", list.Items[0].Name)

	assert.Equal(t, 3, list.Summary.Total)
	assert.Equal(t, 1, list.Summary.InUse)
	assert.Equal(t, 1, list.Summary.Available)
	assert.Equal(t, 1, list.Summary.Maintenance)
	require.Len(t, list.Summary.ExpiringWarranty, 1)
	assert.Equal(t, "Core switch", list.Summary.ExpiringWarranty[0].Name)
}

func TestLinkedAssetCannotBeDeleted(t *testing.T) {
	f := newFixture(t)
	svc := NewAssetService(f.deps)
	ctx := context.Background()
	ticket := f.createTicket(t, "Medium")

	asset, err := svc.CreateAsset(ctx, f.agent, AssetInput{Name: strPtr("Printer"), Type: strPtr("peripheral")})
	require.NoError(t, err)
	require.NoError(t, svc.LinkTicket(ctx, ticket.Ticket.ID, asset.ID, f.agent))

	err = svc.LinkTicket(ctx, ticket.Ticket.ID, asset.ID, f.agent)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	detail, err := svc.GetAsset(ctx, asset.ID, f.agent)
	require.NoError(t, err)
	require.Len(t, detail.Tickets, 1)
	assert.Equal(t, ticket.Ticket.ID, detail.Tickets[0].Ticket.ID)

	assert.True(t, apperrors.HasCode(svc.DeleteAsset(ctx, asset.ID, f.agent), apperrors.CodeForbidden))
	assert.True(t, apperrors.HasCode(svc.DeleteAsset(ctx, asset.ID, f.admin), apperrors.CodeConflict))

	require.NoError(t, svc.UnlinkTicket(ctx, ticket.Ticket.ID, asset.ID, f.agent))
	assert.True(t, apperrors.HasCode(svc.UnlinkTicket(ctx, ticket.Ticket.ID, asset.ID, f.agent), apperrors.CodeNotFound))
	require.NoError(t, svc.DeleteAsset(ctx, asset.ID, f.admin))

	_, err = svc.GetAsset(ctx, asset.ID, f.agent)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestUpdateAssetClearsOptionalFields(t *testing.T) {
	f := newFixture(t)
	svc := NewAssetService(f.deps)
	ctx := context.Background()

	bought := time.Date(2023, 5, 6, 15, 30, 0, 0, time.UTC)
	asset, err := svc.CreateAsset(ctx, f.agent, AssetInput{Name: strPtr("Tablet"), Type: strPtr("mobile"), PurchaseDate: &bought, AssignedToID: &f.agent.ID})
	require.NoError(t, err)
	require.NotNil(t, asset.PurchaseDate)
	assert.Equal(t, time.Date(2023, 5, 6, 0, 0, 0, 0, time.UTC), *asset.PurchaseDate)

	f.advance(time.Hour)
	asset, err = svc.UpdateAsset(ctx, asset.ID, f.agent, AssetInput{ClearPurchaseDate: true, ClearAssignee: true, Notes: strPtr("cracked screen")})
	require.NoError(t, err)
	assert.Nil(t, asset.PurchaseDate)
	assert.Nil(t, asset.AssignedToID)
	assert.Equal(t, "cracked screen", asset.Notes)
	assert.Equal(t, f.now, asset.UpdatedAt)
}
