package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func TestSearchScopesResultsByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	mine := f.createTicket(t, "Medium")
	bob := f.addUser(t, "bob", domain.RoleUser)
	_, err := NewTicketService(f.deps).CreateTicket(ctx, bob, TicketCreateInput{Subject: "VPN token expired", PriorityID: f.prios["Low"]})
	require.NoError(t, err)

	category := seedCategory(t, f, "Network", nil)
	seedArticle(t, f, category.ID, "VPN troubleshooting", "Restart the client.", true)
	seedArticle(t, f, category.ID, "VPN rollout plan", "internal", false)

	_, err = NewAssetService(f.deps).CreateAsset(ctx, f.agent, AssetInput{Name: strPtr("VPN appliance"), Type: strPtr("network")})
	require.NoError(t, err)

	svc := NewSearchService(f.deps)

	userResults, err := svc.Search(ctx, f.user, " vpn ")
	require.NoError(t, err)
	assert.Equal(t, "vpn", userResults.Query)
	require.Len(t, userResults.Tickets, 1)
	assert.Equal(t, mine.Ticket.ID, userResults.Tickets[0].Ticket.ID)
	require.Len(t, userResults.Articles, 1)
	assert.Equal(t, "VPN troubleshooting", userResults.Articles[0].Title)
	assert.Nil(t, userResults.Assets)

	agentResults, err := svc.Search(ctx, f.agent, "vpn")
	require.NoError(t, err)
	assert.Len(t, agentResults.Tickets, 2)
	require.Len(t, agentResults.Assets, 1)
	assert.Equal(t, "VPN appliance", agentResults.Assets[0].Name)

	_, err = svc.Search(ctx, f.agent, "  ")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}
