package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// AssignmentService sets or clears a ticket's assignee.
type AssignmentService struct {
	base
}

// NewAssignmentService constructs the service.
func NewAssignmentService(deps Dependencies) *AssignmentService {
	return &AssignmentService{base: newBase(deps)}
}

// AssignTicket assigns the ticket to an active staff member, or unassigns it when assigneeID is nil or empty.
func (s *AssignmentService) AssignTicket(ctx context.Context, ticketID string, assigneeID *string, actor *domain.User) (*TicketView, error) {
	if err := s.authorize(actor, auth.ResourceTicket, auth.ActionAssign); err != nil {
		return nil, err
	}
	assigneeID = trimmedPtr(assigneeID)

	now := s.now()
	var updated *domain.Ticket
	changed := false

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		ticket, err := s.loadTicket(ctx, tx.Tickets(), ticketID, true)
		if err != nil {
			return err
		}
		if sameAssignee(ticket.AssigneeID, assigneeID) {
			updated = ticket
			return nil
		}
		if assigneeID != nil {
			if err := s.checkAssignee(ctx, tx.Users(), *assigneeID); err != nil {
				return err
			}
		}
		if err := tx.Tickets().Assign(ctx, ticket.ID, assigneeID, now); err != nil {
			return s.storageError("assign ticket", err)
		}
		changed = true
		updated, err = s.loadTicket(ctx, tx.Tickets(), ticket.ID, false)
		return err
	})
	if err != nil {
		return nil, s.passThrough("assign ticket", err)
	}

	if changed {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: updated.ID,
			Actor:    actorOf(actor),
			Payload:  events.TicketAssignedPayload{Subject: updated.Subject, AssigneeID: updated.AssigneeID},
		})
	}
	view := s.view(updated, now)
	return &view, nil
}

func sameAssignee(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
