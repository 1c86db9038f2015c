package dto

import "time"

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content    string  `json:"content" validate:"required,max=20000"`
	IsInternal bool    `json:"is_internal"`
	ParentID   *string `json:"parent_id"`
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID         string    `json:"id"`
	TicketID   string    `json:"ticket_id"`
	AuthorID   string    `json:"author_id"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	ParentID   *string   `json:"parent_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateCommentResponse adds first-response tracking to the stored comment.
type CreateCommentResponse struct {
	Comment       CommentResponse `json:"comment"`
	FirstResponse bool            `json:"first_response"`
	ResponseMet   bool            `json:"response_met"`
}
