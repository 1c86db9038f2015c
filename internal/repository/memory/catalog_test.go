package memory

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

func TestAssetLinksBlockDeleteAndFollowTicketDelete(t *testing.T) {
	s := NewSeededStore()
	ctx := context.Background()
	ticket := seedTicket(t, s)

	asset := &domain.Asset{Name: "Laptop 7", Type: domain.AssetComputer, Status: domain.AssetAvailable}
	require.NoError(t, s.Assets().Create(ctx, asset))
	require.NoError(t, s.Assets().LinkTicket(ctx, ticket.ID, asset.ID))
	assert.ErrorIs(t, s.Assets().LinkTicket(ctx, ticket.ID, asset.ID), apperrors.ErrDuplicate)

	assert.ErrorIs(t, s.Assets().Delete(ctx, asset.ID), apperrors.ErrReferenced)

	linked, err := s.Assets().ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, "Laptop 7", linked[0].Name)

	require.NoError(t, s.Tickets().Delete(ctx, ticket.ID))
	ids, err := s.Assets().ListTicketIDs(ctx, asset.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, s.Assets().Delete(ctx, asset.ID))
}

func TestAssetListFilters(t *testing.T) {
	s := NewSeededStore()
	ctx := context.Background()

	for _, a := range []domain.Asset{
		{Name: "Core switch", Type: domain.AssetNetwork, Status: domain.AssetInUse, SerialNumber: "SW-100"},
		{Name: "Build server", Type: domain.AssetServer, Status: domain.AssetMaintenance, Notes: "fans replaced"},
		{Name: "Spare dock", Type: domain.AssetPeripheral, Status: domain.AssetAvailable},
	} {
		a := a
		require.NoError(t, s.Assets().Create(ctx, &a))
	}

	maintenance := domain.AssetMaintenance
	got, err := s.Assets().List(ctx, repository.AssetFilter{Status: &maintenance})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Build server", got[0].Name)

	term := "sw-1"
	got, err = s.Assets().List(ctx, repository.AssetFilter{SearchTerm: &term})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Core switch", got[0].Name)

	got, err = s.Assets().List(ctx, repository.AssetFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Build server", "Core switch"}, []string{got[0].Name, got[1].Name})
}

func TestKnowledgeCategoryDeleteAndArticleSearch(t *testing.T) {
	s := NewSeededStore()
	ctx := context.Background()
	user := &domain.User{Username: "writer", Email: "writer@example.com", Role: domain.RoleAdministrator, IsActive: true}
	require.NoError(t, s.Users().Create(ctx, user))

	parent := &domain.KBCategory{Name: "Network"}
	require.NoError(t, s.Knowledge().CreateCategory(ctx, parent))
	child := &domain.KBCategory{Name: "VPN", ParentID: &parent.ID}
	require.NoError(t, s.Knowledge().CreateCategory(ctx, child))
	assert.ErrorIs(t, s.Knowledge().DeleteCategory(ctx, parent.ID), apperrors.ErrReferenced)

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	articles := []domain.KBArticle{
		{Title: "Reset VPN token", Content: "Open the portal", IsPublished: true, ViewCount: 2},
		{Title: "Wifi guest access", Content: "Ask reception for the vpn-free network", IsPublished: true, ViewCount: 9},
		{Title: "Draft: VPN v2", Content: "not ready", IsPublished: false},
	}
	for i := range articles {
		a := articles[i]
		a.CategoryID = child.ID
		a.CreatedBy, a.UpdatedBy = user.ID, user.ID
		a.CreatedAt = base
		a.UpdatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, s.Knowledge().CreateArticle(ctx, &a))
	}

	got, err := s.Knowledge().ListArticles(ctx, repository.ArticleFilter{PublishedOnly: true, Terms: []string{"VPN"}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Reset VPN token", got[0].Title)
	assert.Equal(t, "Wifi guest access", got[1].Title)

	popular, err := s.Knowledge().ListArticles(ctx, repository.ArticleFilter{PublishedOnly: true, Order: repository.OrderByViews, Limit: 1})
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, "Wifi guest access", popular[0].Title)

	total, err := s.Knowledge().CountArticles(ctx, repository.ArticleFilter{CategoryID: &child.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.ErrorIs(t, s.Knowledge().DeleteCategory(ctx, child.ID), apperrors.ErrReferenced)
}

func TestWorkFilterOnExpensesAndTimeEntries(t *testing.T) {
	s := NewSeededStore()
	ctx := context.Background()
	ticket := seedTicket(t, s)

	march := func(day int) time.Time { return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC) }
	for _, e := range []domain.Expense{
		{AmountCents: 1200, Description: "cable", Date: march(1), Billable: true},
		{AmountCents: 300, Description: "coffee", Date: march(5), Billable: false},
		{AmountCents: 4500, Description: "adapter", Date: march(10), Billable: true},
	} {
		e := e
		e.TicketID, e.UserID = ticket.ID, ticket.CreatorID
		require.NoError(t, s.Expenses().Create(ctx, &e))
	}

	from, to := march(1), march(6)
	got, err := s.Expenses().List(ctx, repository.WorkFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "coffee", got[0].Description)

	got, err = s.Expenses().List(ctx, repository.WorkFilter{BillableOnly: true})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	end := march(2).Add(time.Hour)
	entry := &domain.TimeEntry{TicketID: ticket.ID, UserID: ticket.CreatorID, StartTime: march(2), EndTime: &end, DurationSeconds: 3600}
	require.NoError(t, s.TimeEntries().Create(ctx, entry))
	entries, err := s.TimeEntries().List(ctx, repository.WorkFilter{UserID: &ticket.CreatorID, From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, s.Tickets().Delete(ctx, ticket.ID))
	got, err = s.Expenses().List(ctx, repository.WorkFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}
