package domain

import "time"

// TicketComment is a message on a ticket thread, optionally a reply to another comment.
type TicketComment struct {
	ID         string
	TicketID   string
	AuthorID   string
	Content    string
	IsInternal bool
	ParentID   *string
	CreatedAt  time.Time
}

// AuditCommentContent is the text recorded when a ticket status changes.
func AuditCommentContent(oldStatus, newStatus string) string {
	return "Status changed from " + oldStatus + " to " + newStatus
}
