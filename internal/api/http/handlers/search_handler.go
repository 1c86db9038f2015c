package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// SearchHandler serves unified search.
type SearchHandler struct {
	search *service.SearchService
}

// NewSearchHandler constructs handler.
func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search GET /search?q=.
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	results, err := h.search.Search(c.UserContext(), user, c.Query("q"))
	if err != nil {
		return err
	}
	resp := dto.SearchResponse{
		Query:    results.Query,
		Tickets:  ticketResponses(results.Tickets),
		Articles: articleResponses(results.Articles),
	}
	if results.Assets != nil {
		resp.Assets = assetResponses(results.Assets)
	}
	return data(c, http.StatusOK, resp)
}
