package domain

import "time"

// KBCategory groups knowledge base articles. Categories nest through ParentID.
type KBCategory struct {
	ID          string
	Name        string
	Description string
	ParentID    *string
	CreatedAt   time.Time
}

// KBArticle is a knowledge base entry. Content is markdown.
type KBArticle struct {
	ID          string
	Title       string
	Content     string
	CategoryID  string
	CreatedBy   string
	UpdatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	IsPublished bool
	ViewCount   int64
}

// CategoryAncestors walks parent links starting at id and returns the ids visited, id first.
// A cycle already present in the data stops the walk.
func CategoryAncestors(byID map[string]KBCategory, id string) []string {
	var chain []string
	seen := map[string]bool{}
	for id != "" && !seen[id] {
		seen[id] = true
		chain = append(chain, id)
		c, ok := byID[id]
		if !ok || c.ParentID == nil {
			break
		}
		id = *c.ParentID
	}
	return chain
}
