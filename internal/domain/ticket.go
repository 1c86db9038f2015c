package domain

import "time"

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID             string
	Number         int64
	Subject        string
	Description    string
	RequesterName  string
	RequesterEmail string
	StatusID       string
	PriorityID     string
	TypeID         string
	AssigneeID     *string
	CreatorID      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DueDate        *time.Time

	SLAResponseDue   *time.Time
	SLAResolutionDue *time.Time
	SLAResponseMet   bool
	SLAResolutionMet bool
	FirstResponseAt  *time.Time
	ResolvedAt       *time.Time

	// Status is populated on reads.
	Status *TicketStatus
}

// IsClosed evaluates the joined status.
func (t *Ticket) IsClosed() bool {
	return t.Status.IsTerminal()
}

// VisibleTo reports whether a User-role account may see the ticket.
func (t *Ticket) VisibleTo(user *User) bool {
	if user == nil {
		return false
	}
	if user.Role.IsStaff() {
		return true
	}
	return t.CreatorID == user.ID || (user.Email != "" && t.RequesterEmail == user.Email)
}
