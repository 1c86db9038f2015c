package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers. The values double as notification setting keys.
type EventType string

const (
	EventNewTicket      EventType = "new_ticket"
	EventTicketUpdated  EventType = "ticket_updated"
	EventTicketResolved EventType = "ticket_resolved"
	EventTicketAssigned EventType = "ticket_assigned"
	EventTicketComment  EventType = "ticket_comment"
)

// TicketEvents lists every event a ticket operation can publish.
var TicketEvents = []EventType{
	EventNewTicket,
	EventTicketUpdated,
	EventTicketResolved,
	EventTicketAssigned,
	EventTicketComment,
}

// Actor identifies who caused an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewTicketPayload payload.
type NewTicketPayload struct {
	Subject  string `json:"subject"`
	Priority string `json:"priority"`
}

// TicketUpdatedPayload describes a field or status change.
type TicketUpdatedPayload struct {
	Subject   string `json:"subject"`
	OldStatus string `json:"old_status,omitempty"`
	NewStatus string `json:"new_status,omitempty"`
	Change    string `json:"change"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	Subject       string     `json:"subject"`
	Status        string     `json:"status"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	ResolutionMet bool       `json:"resolution_met"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	Subject    string  `json:"subject"`
	AssigneeID *string `json:"assignee_id,omitempty"`
}

// TicketCommentPayload payload.
type TicketCommentPayload struct {
	Subject     string `json:"subject"`
	CommentID   string `json:"comment_id"`
	IsInternal  bool   `json:"is_internal"`
	BodyPreview string `json:"body_preview"`
}
