package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicketStatusIsTerminal(t *testing.T) {
	cases := []struct {
		status *TicketStatus
		want   bool
	}{
		{status: nil, want: false},
		{status: &TicketStatus{Name: "Open"}, want: false},
		{status: &TicketStatus{Name: "Resolved"}, want: true},
		{status: &TicketStatus{Name: "  CLOSED "}, want: true},
		{status: &TicketStatus{Name: "completed"}, want: true},
		{status: &TicketStatus{Name: "Archived", IsClosed: true}, want: true},
		{status: &TicketStatus{Name: "Resolving"}, want: false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.status.IsTerminal(), "%+v", tc.status)
	}
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("Technician")
	assert.True(t, ok)
	assert.Equal(t, RoleAgent, role)

	role, ok = ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, RoleAdministrator, role)

	_, ok = ParseRole("guest")
	assert.False(t, ok)
	assert.False(t, RoleUser.IsStaff())
}

func TestTicketVisibleTo(t *testing.T) {
	ticket := &Ticket{CreatorID: "u1", RequesterEmail: "req@example.com"}

	assert.True(t, ticket.VisibleTo(&User{ID: "u1", Role: RoleUser}))
	assert.True(t, ticket.VisibleTo(&User{ID: "u2", Email: "req@example.com", Role: RoleUser}))
	assert.True(t, ticket.VisibleTo(&User{ID: "a1", Role: RoleAgent}))
	assert.False(t, ticket.VisibleTo(&User{ID: "u3", Role: RoleUser}))
	assert.False(t, ticket.VisibleTo(nil))
}
