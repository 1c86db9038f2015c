package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// KnowledgeHandler serves knowledge base endpoints.
type KnowledgeHandler struct {
	kb *service.KnowledgeService
}

// NewKnowledgeHandler constructs handler.
func NewKnowledgeHandler(kb *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{kb: kb}
}

// Index GET /kb.
func (h *KnowledgeHandler) Index(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	index, err := h.kb.Index(c.UserContext(), user)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.KBIndexResponse{
		Categories: categoryResponses(index.Categories),
		Recent:     articleResponses(index.Recent),
		Popular:    articleResponses(index.Popular),
	})
}

// Search GET /kb/search?q=.
func (h *KnowledgeHandler) Search(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	articles, err := h.kb.SearchArticles(c.UserContext(), user, c.Query("q"), optionalQuery(c, "category_id"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, articleResponses(articles))
}

// ListCategories GET /kb/categories.
func (h *KnowledgeHandler) ListCategories(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	categories, err := h.kb.ListCategories(c.UserContext(), user)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, categoryResponses(categories))
}

// GetCategory GET /kb/categories/:id.
func (h *KnowledgeHandler) GetCategory(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	detail, err := h.kb.GetCategory(c.UserContext(), c.Params("id"), user)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.CategoryDetailResponse{
		CategoryResponse: categoryResponse(detail.Category),
		Subcategories:    categoryResponses(detail.Subcategories),
		Articles:         articleResponses(detail.Articles),
	})
}

// CreateCategory POST /kb/categories.
func (h *KnowledgeHandler) CreateCategory(c *fiber.Ctx) error {
	return h.writeCategory(c, true)
}

// UpdateCategory PATCH /kb/categories/:id.
func (h *KnowledgeHandler) UpdateCategory(c *fiber.Ctx) error {
	return h.writeCategory(c, false)
}

func (h *KnowledgeHandler) writeCategory(c *fiber.Ctx, create bool) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.CategoryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	in := service.CategoryInput{Name: req.Name, Description: req.Description, ParentID: req.ParentID}
	if req.ParentID != nil && strings.TrimSpace(*req.ParentID) == "" {
		in.ParentID = nil
		in.ClearParent = true
	}
	var category *domain.KBCategory
	status := http.StatusOK
	if create {
		category, err = h.kb.CreateCategory(c.UserContext(), user, in)
		status = http.StatusCreated
	} else {
		category, err = h.kb.UpdateCategory(c.UserContext(), c.Params("id"), user, in)
	}
	if err != nil {
		return err
	}
	return data(c, status, categoryResponse(category))
}

// DeleteCategory DELETE /kb/categories/:id.
func (h *KnowledgeHandler) DeleteCategory(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	if err := h.kb.DeleteCategory(c.UserContext(), c.Params("id"), user); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListArticles GET /kb/articles?category_id=.
func (h *KnowledgeHandler) ListArticles(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	articles, err := h.kb.ListArticles(c.UserContext(), user, optionalQuery(c, "category_id"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, articleResponses(articles))
}

// GetArticle GET /kb/articles/:id. Each read counts as a view.
func (h *KnowledgeHandler) GetArticle(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	view, err := h.kb.GetArticle(c.UserContext(), c.Params("id"), user)
	if err != nil {
		return err
	}
	resp := dto.ArticleDetailResponse{ArticleResponse: articleResponse(view.Article), Related: articleResponses(view.Related)}
	resp.HTML = view.HTML
	return data(c, http.StatusOK, resp)
}

// CreateArticle POST /kb/articles.
func (h *KnowledgeHandler) CreateArticle(c *fiber.Ctx) error {
	return h.writeArticle(c, true)
}

// UpdateArticle PATCH /kb/articles/:id.
func (h *KnowledgeHandler) UpdateArticle(c *fiber.Ctx) error {
	return h.writeArticle(c, false)
}

func (h *KnowledgeHandler) writeArticle(c *fiber.Ctx, create bool) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.ArticleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	in := service.ArticleInput{Title: req.Title, Content: req.Content, CategoryID: req.CategoryID, IsPublished: req.IsPublished}
	var article *domain.KBArticle
	status := http.StatusOK
	if create {
		article, err = h.kb.CreateArticle(c.UserContext(), user, in)
		status = http.StatusCreated
	} else {
		article, err = h.kb.UpdateArticle(c.UserContext(), c.Params("id"), user, in)
	}
	if err != nil {
		return err
	}
	return data(c, status, articleResponse(article))
}

// DeleteArticle DELETE /kb/articles/:id.
func (h *KnowledgeHandler) DeleteArticle(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	if err := h.kb.DeleteArticle(c.UserContext(), c.Params("id"), user); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
