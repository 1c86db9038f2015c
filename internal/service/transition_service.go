package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TransitionService applies status changes together with their SLA and audit side effects.
type TransitionService struct {
	base
}

// NewTransitionService constructs the service.
func NewTransitionService(deps Dependencies) *TransitionService {
	return &TransitionService{base: newBase(deps)}
}

// TransitionResult reports what a status change did.
type TransitionResult struct {
	Ticket     TicketView
	OldStatus  *domain.TicketStatus
	NewStatus  *domain.TicketStatus
	Changed    bool
	Resolution bool
	// Resolved is true when this call set resolved_at.
	Resolved     bool
	AuditComment *domain.TicketComment
}

// ApplyStatusChange moves the ticket to newStatusID. Locking the row, the conditional
// resolved_at update, the status write and the internal audit comment commit together.
// Re-applying the current status changes nothing.
func (s *TransitionService) ApplyStatusChange(ctx context.Context, ticketID, newStatusID string, actor *domain.User) (*TransitionResult, error) {
	if err := s.authorize(actor, auth.ResourceTicket, auth.ActionStatus); err != nil {
		return nil, err
	}

	now := s.now()
	result := &TransitionResult{}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		ticket, err := s.loadTicket(ctx, tx.Tickets(), ticketID, true)
		if err != nil {
			return err
		}

		newStatus, err := tx.Lookups().GetStatus(ctx, newStatusID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewInvalidStatus(newStatusID)
			}
			return s.storageError("load status", err)
		}

		result.OldStatus = ticket.Status
		result.NewStatus = newStatus
		result.Resolution = newStatus.IsTerminal()

		if ticket.StatusID == newStatus.ID {
			result.Ticket = s.view(ticket, now)
			return nil
		}
		result.Changed = true

		if result.Resolution {
			resolved, err := tx.Tickets().MarkResolved(ctx, ticket.ID, now)
			if err != nil {
				return s.storageError("mark resolved", err)
			}
			result.Resolved = resolved
		}

		if err := tx.Tickets().UpdateStatus(ctx, ticket.ID, newStatus.ID, now); err != nil {
			return s.storageError("update status", err)
		}

		oldName := ""
		if ticket.Status != nil {
			oldName = ticket.Status.Name
		}
		audit := &domain.TicketComment{
			TicketID:   ticket.ID,
			AuthorID:   actor.ID,
			Content:    domain.AuditCommentContent(oldName, newStatus.Name),
			IsInternal: true,
			CreatedAt:  now,
		}
		if err := tx.Comments().Create(ctx, audit); err != nil {
			return s.storageError("insert audit comment", err)
		}
		result.AuditComment = audit

		updated, err := s.loadTicket(ctx, tx.Tickets(), ticket.ID, false)
		if err != nil {
			return err
		}
		result.Ticket = s.view(updated, now)
		return nil
	})
	if err != nil {
		return nil, s.passThrough("apply status change", err)
	}

	if !result.Changed {
		return result, nil
	}

	s.metrics.StatusChanged(result.NewStatus.Name, result.Resolution)
	s.logger.Info("ticket status changed",
		zap.String("ticket_id", ticketID),
		zap.String("status", result.NewStatus.Name),
		zap.Bool("resolved", result.Resolved))

	ticket := result.Ticket.Ticket
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticketID,
		Actor:    actorOf(actor),
		Payload: events.TicketUpdatedPayload{
			Subject:   ticket.Subject,
			OldStatus: result.OldStatusName(),
			NewStatus: result.NewStatus.Name,
			Change:    "status",
		},
	})
	// Only the change that set resolved_at announces the resolution.
	if result.Resolved {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketResolved,
			TicketID: ticketID,
			Actor:    actorOf(actor),
			Payload: events.TicketResolvedPayload{
				Subject:       ticket.Subject,
				Status:        result.NewStatus.Name,
				ResolvedAt:    ticket.ResolvedAt,
				ResolutionMet: ticket.SLAResolutionMet,
			},
		})
	}
	return result, nil
}

// OldStatusName returns the name of the status the ticket left.
func (r *TransitionResult) OldStatusName() string {
	if r.OldStatus == nil {
		return ""
	}
	return r.OldStatus.Name
}
