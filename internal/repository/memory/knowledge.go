package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type knowledgeRepo struct {
	s *Store
}

func (r *knowledgeRepo) CreateCategory(_ context.Context, c *domain.KBCategory) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	if c.ParentID != nil {
		if _, ok := st.categories[*c.ParentID]; !ok {
			return apperrors.ErrNotFound
		}
	}
	c.ID = newID()
	st.categories[c.ID] = *c
	return nil
}

func (r *knowledgeRepo) UpdateCategory(_ context.Context, c *domain.KBCategory) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	row, ok := st.categories[c.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if c.ParentID != nil {
		if _, ok := st.categories[*c.ParentID]; !ok {
			return apperrors.ErrNotFound
		}
	}
	row.Name = c.Name
	row.Description = c.Description
	row.ParentID = c.ParentID
	st.categories[c.ID] = row
	return nil
}

func (r *knowledgeRepo) DeleteCategory(_ context.Context, id string) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	if _, ok := st.categories[id]; !ok {
		return apperrors.ErrNotFound
	}
	for _, c := range st.categories {
		if c.ParentID != nil && *c.ParentID == id {
			return apperrors.ErrReferenced
		}
	}
	for _, a := range st.articles {
		if a.CategoryID == id {
			return apperrors.ErrReferenced
		}
	}
	delete(st.categories, id)
	return nil
}

func (r *knowledgeRepo) GetCategory(_ context.Context, id string) (*domain.KBCategory, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	c, ok := r.s.db().categories[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (r *knowledgeRepo) ListCategories(_ context.Context) ([]domain.KBCategory, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	result := make([]domain.KBCategory, 0, len(r.s.db().categories))
	for _, c := range r.s.db().categories {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *knowledgeRepo) CreateArticle(_ context.Context, a *domain.KBArticle) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	if _, ok := st.categories[a.CategoryID]; !ok {
		return apperrors.ErrNotFound
	}
	a.ID = newID()
	st.articles[a.ID] = *a
	return nil
}

func (r *knowledgeRepo) UpdateArticle(_ context.Context, a *domain.KBArticle) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	row, ok := st.articles[a.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if _, ok := st.categories[a.CategoryID]; !ok {
		return apperrors.ErrNotFound
	}
	row.Title = a.Title
	row.Content = a.Content
	row.CategoryID = a.CategoryID
	row.UpdatedBy = a.UpdatedBy
	row.UpdatedAt = a.UpdatedAt
	row.IsPublished = a.IsPublished
	st.articles[a.ID] = row
	return nil
}

func (r *knowledgeRepo) DeleteArticle(_ context.Context, id string) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	if _, ok := st.articles[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(st.articles, id)
	return nil
}

func (r *knowledgeRepo) GetArticle(_ context.Context, id string) (*domain.KBArticle, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	a, ok := r.s.db().articles[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &a, nil
}

func (r *knowledgeRepo) ListArticles(_ context.Context, filter repository.ArticleFilter) ([]domain.KBArticle, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()

	result := r.matching(filter)
	sort.Slice(result, func(i, j int) bool { return articleLess(filter.Order, result[i], result[j]) })
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r *knowledgeRepo) CountArticles(_ context.Context, filter repository.ArticleFilter) (int, error) {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	return len(r.matching(filter)), nil
}

func (r *knowledgeRepo) IncrementViews(_ context.Context, id string) error {
	r.s.lock.Lock()
	defer r.s.lock.Unlock()
	st := r.s.db()

	a, ok := st.articles[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	a.ViewCount++
	st.articles[id] = a
	return nil
}

func (r *knowledgeRepo) matching(f repository.ArticleFilter) []domain.KBArticle {
	var result []domain.KBArticle
	for _, a := range r.s.db().articles {
		switch {
		case f.CategoryID != nil && *f.CategoryID != a.CategoryID:
			continue
		case f.PublishedOnly && !a.IsPublished:
			continue
		case f.ExcludeID != "" && f.ExcludeID == a.ID:
			continue
		case !matchesTerms(f.Terms, a):
			continue
		}
		result = append(result, a)
	}
	return result
}

func matchesTerms(terms []string, a domain.KBArticle) bool {
	title := strings.ToLower(a.Title)
	content := strings.ToLower(a.Content)
	filtered := false
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		filtered = true
		if strings.Contains(title, term) || strings.Contains(content, term) {
			return true
		}
	}
	return !filtered
}

func articleLess(order repository.ArticleOrder, a, b domain.KBArticle) bool {
	switch order {
	case repository.OrderByRecent:
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
	case repository.OrderByViews:
		if a.ViewCount != b.ViewCount {
			return a.ViewCount > b.ViewCount
		}
	}
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.ID < b.ID
}
