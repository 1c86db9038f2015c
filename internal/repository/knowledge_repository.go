package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ArticleOrder selects the sort used by ListArticles.
type ArticleOrder int

const (
	OrderByTitle ArticleOrder = iota
	OrderByRecent
	OrderByViews
)

// ArticleFilter narrows article lists. Terms match title or content; any term is enough.
type ArticleFilter struct {
	CategoryID    *string
	PublishedOnly bool
	Terms         []string
	ExcludeID     string
	Order         ArticleOrder
	Limit         int
}

// KnowledgeRepository persists knowledge base categories and articles.
type KnowledgeRepository interface {
	CreateCategory(ctx context.Context, category *domain.KBCategory) error
	UpdateCategory(ctx context.Context, category *domain.KBCategory) error
	DeleteCategory(ctx context.Context, id string) error
	GetCategory(ctx context.Context, id string) (*domain.KBCategory, error)
	ListCategories(ctx context.Context) ([]domain.KBCategory, error)

	CreateArticle(ctx context.Context, article *domain.KBArticle) error
	UpdateArticle(ctx context.Context, article *domain.KBArticle) error
	DeleteArticle(ctx context.Context, id string) error
	GetArticle(ctx context.Context, id string) (*domain.KBArticle, error)
	ListArticles(ctx context.Context, filter ArticleFilter) ([]domain.KBArticle, error)
	CountArticles(ctx context.Context, filter ArticleFilter) (int, error)
	IncrementViews(ctx context.Context, id string) error
}

type knowledgeRepository struct {
	db Querier
}

// NewKnowledgeRepository returns a Postgres-backed implementation.
func NewKnowledgeRepository(db Querier) KnowledgeRepository {
	return &knowledgeRepository{db: db}
}

const (
	categoryColumns = `id, name, description, parent_id, created_at`
	articleColumns  = `id, title, content, category_id, created_by, updated_by, created_at, updated_at, is_published, view_count`
)

func (r *knowledgeRepository) CreateCategory(ctx context.Context, c *domain.KBCategory) error {
	const query = `
        INSERT INTO kb_categories (name, description, parent_id, created_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	return r.db.QueryRow(ctx, query, c.Name, c.Description, c.ParentID, c.CreatedAt).Scan(&c.ID)
}

func (r *knowledgeRepository) UpdateCategory(ctx context.Context, c *domain.KBCategory) error {
	const query = `UPDATE kb_categories SET name=$1, description=$2, parent_id=$3 WHERE id=$4`
	return expectOne(r.db.Exec(ctx, query, c.Name, c.Description, c.ParentID, c.ID))
}

func (r *knowledgeRepository) DeleteCategory(ctx context.Context, id string) error {
	if err := checkIDs(id); err != nil {
		return err
	}
	return expectOne(r.db.Exec(ctx, `DELETE FROM kb_categories WHERE id=$1`, id))
}

func (r *knowledgeRepository) GetCategory(ctx context.Context, id string) (*domain.KBCategory, error) {
	if err := checkIDs(id); err != nil {
		return nil, err
	}
	return scanCategory(r.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM kb_categories WHERE id=$1`, id))
}

func (r *knowledgeRepository) ListCategories(ctx context.Context) ([]domain.KBCategory, error) {
	rows, err := r.db.Query(ctx, `SELECT `+categoryColumns+` FROM kb_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.KBCategory
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}

func (r *knowledgeRepository) CreateArticle(ctx context.Context, a *domain.KBArticle) error {
	const query = `
        INSERT INTO kb_articles (title, content, category_id, created_by, updated_by, created_at, updated_at, is_published)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id`
	return r.db.QueryRow(ctx, query,
		a.Title,
		a.Content,
		a.CategoryID,
		a.CreatedBy,
		a.UpdatedBy,
		a.CreatedAt,
		a.UpdatedAt,
		a.IsPublished,
	).Scan(&a.ID)
}

func (r *knowledgeRepository) UpdateArticle(ctx context.Context, a *domain.KBArticle) error {
	const query = `
        UPDATE kb_articles SET title=$1, content=$2, category_id=$3, updated_by=$4, updated_at=$5, is_published=$6
        WHERE id=$7`
	return expectOne(r.db.Exec(ctx, query,
		a.Title,
		a.Content,
		a.CategoryID,
		a.UpdatedBy,
		a.UpdatedAt,
		a.IsPublished,
		a.ID,
	))
}

func (r *knowledgeRepository) DeleteArticle(ctx context.Context, id string) error {
	if err := checkIDs(id); err != nil {
		return err
	}
	return expectOne(r.db.Exec(ctx, `DELETE FROM kb_articles WHERE id=$1`, id))
}

func (r *knowledgeRepository) GetArticle(ctx context.Context, id string) (*domain.KBArticle, error) {
	if err := checkIDs(id); err != nil {
		return nil, err
	}
	return scanArticle(r.db.QueryRow(ctx, `SELECT `+articleColumns+` FROM kb_articles WHERE id=$1`, id))
}

func (r *knowledgeRepository) ListArticles(ctx context.Context, filter ArticleFilter) ([]domain.KBArticle, error) {
	if filter.CategoryID != nil {
		if err := checkIDs(*filter.CategoryID); err != nil {
			return nil, nil
		}
	}
	where, args := buildArticleWhere(filter)
	query := `SELECT ` + articleColumns + ` FROM kb_articles WHERE ` + where + ` ORDER BY ` + articleOrderBy(filter.Order)
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.KBArticle
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func (r *knowledgeRepository) CountArticles(ctx context.Context, filter ArticleFilter) (int, error) {
	if filter.CategoryID != nil {
		if err := checkIDs(*filter.CategoryID); err != nil {
			return 0, nil
		}
	}
	where, args := buildArticleWhere(filter)
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM kb_articles WHERE `+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *knowledgeRepository) IncrementViews(ctx context.Context, id string) error {
	if err := checkIDs(id); err != nil {
		return err
	}
	return expectOne(r.db.Exec(ctx, `UPDATE kb_articles SET view_count = view_count + 1 WHERE id=$1`, id))
}

func buildArticleWhere(filter ArticleFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("category_id=$%d", len(args)))
	}
	if filter.PublishedOnly {
		clauses = append(clauses, "is_published")
	}
	if filter.ExcludeID != "" {
		args = append(args, filter.ExcludeID)
		clauses = append(clauses, fmt.Sprintf("id<>$%d", len(args)))
	}
	var matches []string
	for _, term := range filter.Terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		args = append(args, "%"+term+"%")
		matches = append(matches, fmt.Sprintf("title ILIKE $%[1]d OR content ILIKE $%[1]d", len(args)))
	}
	if len(matches) > 0 {
		clauses = append(clauses, "("+strings.Join(matches, " OR ")+")")
	}
	return strings.Join(clauses, " AND "), args
}

func articleOrderBy(order ArticleOrder) string {
	switch order {
	case OrderByRecent:
		return "updated_at DESC"
	case OrderByViews:
		return "view_count DESC, title"
	default:
		return "title"
	}
}

func scanCategory(row pgx.Row) (*domain.KBCategory, error) {
	var c domain.KBCategory
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ParentID, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanArticle(row pgx.Row) (*domain.KBArticle, error) {
	var a domain.KBArticle
	if err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Content,
		&a.CategoryID,
		&a.CreatedBy,
		&a.UpdatedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.IsPublished,
		&a.ViewCount,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
