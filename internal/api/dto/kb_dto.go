package dto

import "time"

// CategoryRequest payload for create and update. An empty parent_id moves the category to the top level.
type CategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=64"`
	Description *string `json:"description" validate:"omitempty,max=256"`
	ParentID    *string `json:"parent_id"`
}

// ArticleRequest payload for create and update.
type ArticleRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=255"`
	Content     *string `json:"content"`
	CategoryID  *string `json:"category_id"`
	IsPublished *bool   `json:"is_published"`
}

// CategoryResponse represents a category.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ParentID    *string   `json:"parent_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ArticleResponse represents an article. HTML is present on single article reads.
type ArticleResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	HTML        string    `json:"html,omitempty"`
	CategoryID  string    `json:"category_id"`
	CreatedBy   string    `json:"created_by"`
	UpdatedBy   string    `json:"updated_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	IsPublished bool      `json:"is_published"`
	ViewCount   int64     `json:"view_count"`
}

// ArticleDetailResponse adds related articles.
type ArticleDetailResponse struct {
	ArticleResponse
	Related []ArticleResponse `json:"related"`
}

// CategoryDetailResponse is a category with its children and articles.
type CategoryDetailResponse struct {
	CategoryResponse
	Subcategories []CategoryResponse `json:"subcategories"`
	Articles      []ArticleResponse  `json:"articles"`
}

// KBIndexResponse is the knowledge base landing page.
type KBIndexResponse struct {
	Categories []CategoryResponse `json:"categories"`
	Recent     []ArticleResponse  `json:"recent"`
	Popular    []ArticleResponse  `json:"popular"`
}

// SearchResponse groups unified search matches. Assets is omitted for accounts that cannot see them.
type SearchResponse struct {
	Query    string            `json:"query"`
	Tickets  []TicketResponse  `json:"tickets"`
	Articles []ArticleResponse `json:"articles"`
	Assets   []AssetResponse   `json:"assets,omitempty"`
}
