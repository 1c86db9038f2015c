package service

import (
	"context"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	searchTicketLimit  = 20
	searchArticleLimit = 10
	searchAssetLimit   = 10
)

// SearchService looks a query up across tickets, knowledge base articles and assets.
type SearchService struct {
	base
	knowledge *KnowledgeService
}

// NewSearchService constructs the service.
func NewSearchService(deps Dependencies) *SearchService {
	return &SearchService{base: newBase(deps), knowledge: NewKnowledgeService(deps)}
}

// SearchResults groups matches by kind. Assets is nil when the viewer may not see assets.
type SearchResults struct {
	Query    string
	Tickets  []TicketView
	Articles []domain.KBArticle
	Assets   []domain.Asset
}

// Search matches tickets the viewer can read, published articles, and assets for staff.
func (s *SearchService) Search(ctx context.Context, viewer *domain.User, query string) (*SearchResults, error) {
	if err := s.authorize(viewer, auth.ResourceSearch, auth.ActionRead); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError("search query is required", map[string]any{"field": "q"})
	}
	results := &SearchResults{Query: query}

	filter := repository.TicketFilter{SearchTerm: &query, Limit: searchTicketLimit}
	if !s.can(viewer, auth.ResourceTicket, auth.ActionReadAll) {
		filter.OwnerID = &viewer.ID
		filter.OwnerEmail = viewer.Email
	}
	tickets, err := s.store.Tickets().List(ctx, filter)
	if err != nil {
		return nil, s.storageError("search tickets", err)
	}
	now := s.now()
	for i := range tickets {
		results.Tickets = append(results.Tickets, s.view(&tickets[i], now))
	}

	if s.can(viewer, auth.ResourceKnowledge, auth.ActionRead) {
		if results.Articles, err = s.knowledge.searchArticles(ctx, []string{query}, nil, searchArticleLimit); err != nil {
			return nil, err
		}
	}

	if s.can(viewer, auth.ResourceAsset, auth.ActionRead) {
		if results.Assets, err = s.store.Assets().List(ctx, repository.AssetFilter{SearchTerm: &query, Limit: searchAssetLimit}); err != nil {
			return nil, s.storageError("search assets", err)
		}
	}
	return results, nil
}
