package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/markdown"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	kbHighlights   = 5
	kbRelatedLimit = 5
)

// KnowledgeService manages knowledge base categories and articles. Only administrators
// write, and only they see unpublished articles.
type KnowledgeService struct {
	base
	renderer *markdown.Renderer
}

// NewKnowledgeService constructs the service.
func NewKnowledgeService(deps Dependencies) *KnowledgeService {
	return &KnowledgeService{base: newBase(deps), renderer: markdown.NewRenderer()}
}

// CategoryInput creates or edits a category; nil leaves a field unchanged on update.
type CategoryInput struct {
	Name        *string
	Description *string
	ParentID    *string
	ClearParent bool
}

// ArticleInput creates or edits an article; nil leaves a field unchanged on update.
type ArticleInput struct {
	Title       *string
	Content     *string
	CategoryID  *string
	IsPublished *bool
}

// KBIndex is the knowledge base landing page.
type KBIndex struct {
	Categories []domain.KBCategory
	Recent     []domain.KBArticle
	Popular    []domain.KBArticle
}

// CategoryDetail is a category with its children and visible articles.
type CategoryDetail struct {
	Category      *domain.KBCategory
	Subcategories []domain.KBCategory
	Articles      []domain.KBArticle
}

// ArticleView is an article with rendered HTML and related reading.
type ArticleView struct {
	Article *domain.KBArticle
	HTML    string
	Related []domain.KBArticle
}

func (s *KnowledgeService) manager(user *domain.User) bool {
	return s.can(user, auth.ResourceKnowledge, auth.ActionManage)
}

// Index returns top-level categories with the newest and most viewed published articles.
func (s *KnowledgeService) Index(ctx context.Context, viewer *domain.User) (*KBIndex, error) {
	if err := s.authorize(viewer, auth.ResourceKnowledge, auth.ActionRead); err != nil {
		return nil, err
	}
	categories, err := s.store.Knowledge().ListCategories(ctx)
	if err != nil {
		return nil, s.storageError("list categories", err)
	}
	index := &KBIndex{}
	for _, c := range categories {
		if c.ParentID == nil {
			index.Categories = append(index.Categories, c)
		}
	}
	repo := s.store.Knowledge()
	if index.Recent, err = repo.ListArticles(ctx, repository.ArticleFilter{PublishedOnly: true, Order: repository.OrderByRecent, Limit: kbHighlights}); err != nil {
		return nil, s.storageError("list recent articles", err)
	}
	if index.Popular, err = repo.ListArticles(ctx, repository.ArticleFilter{PublishedOnly: true, Order: repository.OrderByViews, Limit: kbHighlights}); err != nil {
		return nil, s.storageError("list popular articles", err)
	}
	return index, nil
}

// ListCategories returns every category ordered by name.
func (s *KnowledgeService) ListCategories(ctx context.Context, viewer *domain.User) ([]domain.KBCategory, error) {
	if err := s.authorize(viewer, auth.ResourceKnowledge, auth.ActionRead); err != nil {
		return nil, err
	}
	categories, err := s.store.Knowledge().ListCategories(ctx)
	if err != nil {
		return nil, s.storageError("list categories", err)
	}
	return categories, nil
}

// GetCategory returns the category, its direct children and the articles the viewer may see.
func (s *KnowledgeService) GetCategory(ctx context.Context, id string, viewer *domain.User) (*CategoryDetail, error) {
	if err := s.authorize(viewer, auth.ResourceKnowledge, auth.ActionRead); err != nil {
		return nil, err
	}
	repo := s.store.Knowledge()
	category, err := s.loadCategory(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	all, err := repo.ListCategories(ctx)
	if err != nil {
		return nil, s.storageError("list categories", err)
	}
	detail := &CategoryDetail{Category: category}
	for _, c := range all {
		if c.ParentID != nil && *c.ParentID == id {
			detail.Subcategories = append(detail.Subcategories, c)
		}
	}
	filter := repository.ArticleFilter{CategoryID: &id, PublishedOnly: !s.manager(viewer)}
	if detail.Articles, err = repo.ListArticles(ctx, filter); err != nil {
		return nil, s.storageError("list category articles", err)
	}
	return detail, nil
}

// CreateCategory adds a category, optionally under an existing parent.
func (s *KnowledgeService) CreateCategory(ctx context.Context, actor *domain.User, in CategoryInput) (*domain.KBCategory, error) {
	if err := s.authorize(actor, auth.ResourceKnowledge, auth.ActionManage); err != nil {
		return nil, err
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	category := &domain.KBCategory{CreatedAt: s.now()}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := s.applyCategory(ctx, tx.Knowledge(), category, in); err != nil {
			return err
		}
		if err := tx.Knowledge().CreateCategory(ctx, category); err != nil {
			return s.storageError("create category", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.passThrough("create category", err)
	}
	return category, nil
}

// UpdateCategory edits a category. A parent that would make the category its own ancestor is rejected.
func (s *KnowledgeService) UpdateCategory(ctx context.Context, id string, actor *domain.User, in CategoryInput) (*domain.KBCategory, error) {
	if err := s.authorize(actor, auth.ResourceKnowledge, auth.ActionManage); err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	var category *domain.KBCategory

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		if category, err = s.loadCategory(ctx, tx.Knowledge(), id); err != nil {
			return err
		}
		if err := s.applyCategory(ctx, tx.Knowledge(), category, in); err != nil {
			return err
		}
		if err := tx.Knowledge().UpdateCategory(ctx, category); err != nil {
			return s.storageError("update category", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.passThrough("update category", err)
	}
	return category, nil
}

// DeleteCategory removes a category that holds no articles and no subcategories.
func (s *KnowledgeService) DeleteCategory(ctx context.Context, id string, actor *domain.User) error {
	if err := s.authorize(actor, auth.ResourceKnowledge, auth.ActionManage); err != nil {
		return err
	}
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		repo := tx.Knowledge()
		if _, err := s.loadCategory(ctx, repo, id); err != nil {
			return err
		}
		articles, err := repo.CountArticles(ctx, repository.ArticleFilter{CategoryID: &id})
		if err != nil {
			return s.storageError("count category articles", err)
		}
		if articles > 0 {
			return apperrors.NewConflict("category still has articles", map[string]any{"category_id": id, "articles": articles})
		}
		if err := repo.DeleteCategory(ctx, id); err != nil {
			if apperrors.IsReferenced(err) {
				return apperrors.NewConflict("category still has subcategories", map[string]any{"category_id": id})
			}
			return s.storageError("delete category", err)
		}
		return nil
	})
	return s.passThrough("delete category", err)
}

// ListArticles returns the articles the viewer may see, optionally within one category.
func (s *KnowledgeService) ListArticles(ctx context.Context, viewer *domain.User, categoryID *string) ([]domain.KBArticle, error) {
	if err := s.authorize(viewer, auth.ResourceKnowledge, auth.ActionRead); err != nil {
		return nil, err
	}
	filter := repository.ArticleFilter{CategoryID: trimmedPtr(categoryID), PublishedOnly: !s.manager(viewer)}
	articles, err := s.store.Knowledge().ListArticles(ctx, filter)
	if err != nil {
		return nil, s.storageError("list articles", err)
	}
	return articles, nil
}

// GetArticle counts a view and returns the rendered article with up to five related
// published articles from the same category.
func (s *KnowledgeService) GetArticle(ctx context.Context, id string, viewer *domain.User) (*ArticleView, error) {
	if err := s.authorize(viewer, auth.ResourceKnowledge, auth.ActionRead); err != nil {
		return nil, err
	}
	var article *domain.KBArticle

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		if article, err = s.loadArticle(ctx, tx.Knowledge(), id); err != nil {
			return err
		}
		if !article.IsPublished && !s.manager(viewer) {
			return apperrors.NewNotFound("article", map[string]any{"article_id": id})
		}
		if err := tx.Knowledge().IncrementViews(ctx, id); err != nil {
			return s.storageError("count article view", err)
		}
		article.ViewCount++
		return nil
	})
	if err != nil {
		return nil, s.passThrough("get article", err)
	}
	s.metrics.ArticleViewed()

	html, err := s.renderer.Render(article.Content)
	if err != nil {
		return nil, s.storageError("render article", err)
	}
	related, err := s.store.Knowledge().ListArticles(ctx, repository.ArticleFilter{
		CategoryID:    &article.CategoryID,
		PublishedOnly: true,
		ExcludeID:     article.ID,
		Order:         repository.OrderByViews,
		Limit:         kbRelatedLimit,
	})
	if err != nil {
		return nil, s.storageError("list related articles", err)
	}
	return &ArticleView{Article: article, HTML: html, Related: related}, nil
}

// CreateArticle adds an article. Articles are published unless IsPublished says otherwise.
func (s *KnowledgeService) CreateArticle(ctx context.Context, actor *domain.User, in ArticleInput) (*domain.KBArticle, error) {
	if err := s.authorize(actor, auth.ResourceKnowledge, auth.ActionManage); err != nil {
		return nil, err
	}
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, apperrors.NewValidationError("title is required", map[string]any{"field": "title"})
	}
	if in.Content == nil || strings.TrimSpace(*in.Content) == "" {
		return nil, apperrors.NewValidationError("content is required", map[string]any{"field": "content"})
	}
	if trimmedPtr(in.CategoryID) == nil {
		return nil, apperrors.NewValidationError("category is required", map[string]any{"field": "category_id"})
	}
	now := s.now()
	article := &domain.KBArticle{
		CreatedBy:   actor.ID,
		UpdatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
		IsPublished: true,
	}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := s.applyArticle(ctx, tx.Knowledge(), article, in); err != nil {
			return err
		}
		if err := tx.Knowledge().CreateArticle(ctx, article); err != nil {
			return s.storageError("create article", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.passThrough("create article", err)
	}
	s.logger.Info("kb article created", zap.String("article_id", article.ID), zap.Bool("published", article.IsPublished))
	return article, nil
}

// UpdateArticle edits an article and records who changed it.
func (s *KnowledgeService) UpdateArticle(ctx context.Context, id string, actor *domain.User, in ArticleInput) (*domain.KBArticle, error) {
	if err := s.authorize(actor, auth.ResourceKnowledge, auth.ActionManage); err != nil {
		return nil, err
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, apperrors.NewValidationError("title is required", map[string]any{"field": "title"})
	}
	if in.Content != nil && strings.TrimSpace(*in.Content) == "" {
		return nil, apperrors.NewValidationError("content is required", map[string]any{"field": "content"})
	}
	var article *domain.KBArticle

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		if article, err = s.loadArticle(ctx, tx.Knowledge(), id); err != nil {
			return err
		}
		if err := s.applyArticle(ctx, tx.Knowledge(), article, in); err != nil {
			return err
		}
		article.UpdatedBy = actor.ID
		article.UpdatedAt = s.now()
		if err := tx.Knowledge().UpdateArticle(ctx, article); err != nil {
			return s.storageError("update article", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.passThrough("update article", err)
	}
	return article, nil
}

// DeleteArticle removes an article.
func (s *KnowledgeService) DeleteArticle(ctx context.Context, id string, actor *domain.User) error {
	if err := s.authorize(actor, auth.ResourceKnowledge, auth.ActionManage); err != nil {
		return err
	}
	if err := s.store.Knowledge().DeleteArticle(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("article", map[string]any{"article_id": id})
		}
		return s.storageError("delete article", err)
	}
	return nil
}

// SearchArticles matches published articles containing any whitespace separated term in
// the title or body, ordered by title.
func (s *KnowledgeService) SearchArticles(ctx context.Context, viewer *domain.User, query string, categoryID *string) ([]domain.KBArticle, error) {
	if err := s.authorize(viewer, auth.ResourceKnowledge, auth.ActionRead); err != nil {
		return nil, err
	}
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil, apperrors.NewValidationError("search query is required", map[string]any{"field": "q"})
	}
	return s.searchArticles(ctx, terms, trimmedPtr(categoryID), 0)
}

func (s *KnowledgeService) searchArticles(ctx context.Context, terms []string, categoryID *string, limit int) ([]domain.KBArticle, error) {
	articles, err := s.store.Knowledge().ListArticles(ctx, repository.ArticleFilter{
		CategoryID:    categoryID,
		PublishedOnly: true,
		Terms:         terms,
		Order:         repository.OrderByTitle,
		Limit:         limit,
	})
	if err != nil {
		return nil, s.storageError("search articles", err)
	}
	return articles, nil
}

func (s *KnowledgeService) applyCategory(ctx context.Context, repo repository.KnowledgeRepository, category *domain.KBCategory, in CategoryInput) error {
	applyString(&category.Name, in.Name)
	applyString(&category.Description, in.Description)

	if in.ClearParent {
		category.ParentID = nil
		return nil
	}
	parentID := trimmedPtr(in.ParentID)
	if parentID == nil {
		return nil
	}
	if _, err := repo.GetCategory(ctx, *parentID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewValidationError("parent category does not exist", map[string]any{"field": "parent_id", "value": *parentID})
		}
		return s.storageError("load parent category", err)
	}
	if category.ID != "" {
		all, err := repo.ListCategories(ctx)
		if err != nil {
			return s.storageError("list categories", err)
		}
		byID := make(map[string]domain.KBCategory, len(all))
		for _, c := range all {
			byID[c.ID] = c
		}
		for _, ancestor := range domain.CategoryAncestors(byID, *parentID) {
			if ancestor == category.ID {
				return apperrors.NewValidationError("category cannot be its own ancestor", map[string]any{"field": "parent_id", "value": *parentID})
			}
		}
	}
	category.ParentID = parentID
	return nil
}

func (s *KnowledgeService) applyArticle(ctx context.Context, repo repository.KnowledgeRepository, article *domain.KBArticle, in ArticleInput) error {
	applyString(&article.Title, in.Title)
	if in.Content != nil {
		article.Content = *in.Content
	}
	if in.IsPublished != nil {
		article.IsPublished = *in.IsPublished
	}
	categoryID := trimmedPtr(in.CategoryID)
	if categoryID == nil {
		return nil
	}
	if _, err := repo.GetCategory(ctx, *categoryID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewValidationError("category does not exist", map[string]any{"field": "category_id", "value": *categoryID})
		}
		return s.storageError("load category", err)
	}
	article.CategoryID = *categoryID
	return nil
}

func (s *KnowledgeService) loadCategory(ctx context.Context, repo repository.KnowledgeRepository, id string) (*domain.KBCategory, error) {
	category, err := repo.GetCategory(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("category", map[string]any{"category_id": id})
		}
		return nil, s.storageError("load category", err)
	}
	return category, nil
}

func (s *KnowledgeService) loadArticle(ctx context.Context, repo repository.KnowledgeRepository, id string) (*domain.KBArticle, error) {
	article, err := repo.GetArticle(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("article", map[string]any{"article_id": id})
		}
		return nil, s.storageError("load article", err)
	}
	return article, nil
}
