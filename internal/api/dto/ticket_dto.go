package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/sla"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject        string     `json:"subject" validate:"required,max=255"`
	Description    string     `json:"description" validate:"max=20000"`
	RequesterName  string     `json:"requester_name" validate:"max=255"`
	RequesterEmail string     `json:"requester_email" validate:"omitempty,email"`
	StatusID       string     `json:"status_id"`
	PriorityID     string     `json:"priority_id"`
	TypeID         string     `json:"type_id"`
	AssigneeID     *string    `json:"assignee_id"`
	DueDate        *time.Time `json:"due_date"`
}

// UpdateTicketRequest payload. Absent fields are left unchanged.
type UpdateTicketRequest struct {
	Subject        *string    `json:"subject" validate:"omitempty,max=255"`
	Description    *string    `json:"description" validate:"omitempty,max=20000"`
	RequesterName  *string    `json:"requester_name" validate:"omitempty,max=255"`
	RequesterEmail *string    `json:"requester_email" validate:"omitempty,email"`
	PriorityID     *string    `json:"priority_id"`
	TypeID         *string    `json:"type_id"`
	DueDate        *time.Time `json:"due_date"`
	ClearDueDate   bool       `json:"clear_due_date"`
}

// StatusChangeRequest payload.
type StatusChangeRequest struct {
	StatusID string `json:"status_id" validate:"required"`
}

// AssignRequest payload. An empty assignee unassigns.
type AssignRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// StatusResponse is the joined status of a ticket.
type StatusResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color,omitempty"`
	IsClosed bool   `json:"is_closed"`
}

// TicketResponse is a ticket with its SLA evaluation.
type TicketResponse struct {
	ID               string          `json:"id"`
	Key              string          `json:"key"`
	Number           int64           `json:"number"`
	Subject          string          `json:"subject"`
	Description      string          `json:"description"`
	RequesterName    string          `json:"requester_name"`
	RequesterEmail   string          `json:"requester_email"`
	StatusID         string          `json:"status_id"`
	Status           *StatusResponse `json:"status,omitempty"`
	PriorityID       string          `json:"priority_id"`
	TypeID           string          `json:"type_id"`
	AssigneeID       *string         `json:"assignee_id"`
	CreatorID        string          `json:"creator_id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DueDate          *time.Time      `json:"due_date"`
	SLAResponseDue   *time.Time      `json:"sla_response_due"`
	SLAResolutionDue *time.Time      `json:"sla_resolution_due"`
	SLAResponseMet   bool            `json:"sla_response_met"`
	SLAResolutionMet bool            `json:"sla_resolution_met"`
	FirstResponseAt  *time.Time      `json:"first_response_at"`
	ResolvedAt       *time.Time      `json:"resolved_at"`
	SLA              sla.Status      `json:"sla"`
	Closed           bool            `json:"closed"`
	Breached         bool            `json:"breached"`
	AtRisk           bool            `json:"at_risk"`
	Overdue          bool            `json:"overdue"`
}

// TicketListResponse is one page of tickets.
type TicketListResponse struct {
	Items  []TicketResponse `json:"items"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// TransitionResponse reports a status change.
type TransitionResponse struct {
	Ticket    TicketResponse   `json:"ticket"`
	OldStatus string           `json:"old_status"`
	NewStatus string           `json:"new_status"`
	Changed   bool             `json:"changed"`
	Resolved  bool             `json:"resolved"`
	Audit     *CommentResponse `json:"audit_comment,omitempty"`
}

// NamedCountResponse is a dashboard counter.
type NamedCountResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyCountResponse is one day of ticket volume.
type DailyCountResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DashboardResponse aggregates counters.
type DashboardResponse struct {
	Total      int                  `json:"total"`
	Open       int                  `json:"open"`
	Mine       int                  `json:"mine"`
	Unassigned int                  `json:"unassigned"`
	Overdue    int                  `json:"overdue"`
	Breached   int                  `json:"breached"`
	AtRisk     int                  `json:"at_risk"`
	ByStatus   []NamedCountResponse `json:"by_status"`
	ByPriority []NamedCountResponse `json:"by_priority"`
	Recent     []TicketResponse     `json:"recent"`
	Volume     []DailyCountResponse `json:"volume"`

	TotalAssets       int `json:"total_assets"`
	AssignedAssets    int `json:"assigned_assets"`
	PublishedArticles int `json:"kb_articles"`
}
