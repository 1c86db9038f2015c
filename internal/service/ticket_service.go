package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	base
}

// NewTicketService constructs the service.
func NewTicketService(deps Dependencies) *TicketService {
	return &TicketService{base: newBase(deps)}
}

// TicketCreateInput describes ticket creation payload. Empty ids fall back to the defaults.
type TicketCreateInput struct {
	Subject        string
	Description    string
	RequesterName  string
	RequesterEmail string
	StatusID       string
	PriorityID     string
	TypeID         string
	AssigneeID     *string
	DueDate        *time.Time
}

// TicketUpdateInput carries the editable fields; nil leaves a field unchanged.
type TicketUpdateInput struct {
	Subject        *string
	Description    *string
	RequesterName  *string
	RequesterEmail *string
	PriorityID     *string
	TypeID         *string
	DueDate        *time.Time
	ClearDueDate   bool
}

// TicketListFilter describes list parameters.
type TicketListFilter struct {
	StatusID    *string
	PriorityID  *string
	AssigneeID  *string
	Unassigned  bool
	Search      *string
	CreatedFrom *time.Time
	// CreatedTo is a date; the whole day is included.
	CreatedTo *time.Time
	Limit     int
	Offset    int
}

// TicketPage is one page of a ticket list.
type TicketPage struct {
	Items  []TicketView
	Total  int
	Limit  int
	Offset int
}

// CreateTicket creates a ticket and fixes its SLA due dates from the priority.
func (s *TicketService) CreateTicket(ctx context.Context, creator *domain.User, input TicketCreateInput) (*TicketView, error) {
	if err := s.authorize(creator, auth.ResourceTicket, auth.ActionCreate); err != nil {
		return nil, err
	}
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject is required", map[string]any{"field": "subject"})
	}
	assigneeID := trimmedPtr(input.AssigneeID)
	if assigneeID != nil && !s.can(creator, auth.ResourceTicket, auth.ActionAssign) {
		return nil, apperrors.NewForbidden("only staff may assign tickets")
	}

	now := s.now()
	ticket := &domain.Ticket{
		Subject:        subject,
		Description:    strings.TrimSpace(input.Description),
		RequesterName:  strings.TrimSpace(input.RequesterName),
		RequesterEmail: strings.TrimSpace(input.RequesterEmail),
		AssigneeID:     assigneeID,
		CreatorID:      creator.ID,
		CreatedAt:      now,
		DueDate:        input.DueDate,
	}
	if ticket.RequesterName == "" {
		ticket.RequesterName = creator.FullName()
		if ticket.RequesterName == "" {
			ticket.RequesterName = creator.Username
		}
	}
	if ticket.RequesterEmail == "" {
		ticket.RequesterEmail = creator.Email
	}

	var priority *domain.TicketPriority
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		status, err := s.resolveStatus(ctx, tx.Lookups(), input.StatusID)
		if err != nil {
			return err
		}
		priority, err = s.resolvePriority(ctx, tx.Lookups(), input.PriorityID)
		if err != nil {
			return err
		}
		ticketType, err := s.resolveType(ctx, tx.Lookups(), input.TypeID)
		if err != nil {
			return err
		}
		if assigneeID != nil {
			if err := s.checkAssignee(ctx, tx.Users(), *assigneeID); err != nil {
				return err
			}
		}

		ticket.StatusID = status.ID
		ticket.PriorityID = priority.ID
		ticket.TypeID = ticketType.ID
		sla.ComputeDueDates(ticket, priority, now)

		if err := tx.Tickets().Create(ctx, ticket); err != nil {
			return s.storageError("create ticket", err)
		}
		ticket.Status = status
		return nil
	})
	if err != nil {
		return nil, s.passThrough("create ticket", err)
	}

	s.metrics.TicketCreated()
	s.logger.Info("ticket created", zap.String("ticket_id", ticket.ID), zap.Int64("number", ticket.Number))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventNewTicket,
		TicketID: ticket.ID,
		Actor:    actorOf(creator),
		Payload:  events.NewTicketPayload{Subject: ticket.Subject, Priority: priority.Name},
	})

	view := s.view(ticket, now)
	return &view, nil
}

func (s *TicketService) resolveStatus(ctx context.Context, lookups repository.LookupRepository, id string) (*domain.TicketStatus, error) {
	var (
		status *domain.TicketStatus
		err    error
	)
	if strings.TrimSpace(id) == "" {
		status, err = lookups.DefaultStatus(ctx)
	} else {
		status, err = lookups.GetStatus(ctx, id)
	}
	return lookupResult(s.base, status, err, "status_id", id)
}

func (s *TicketService) resolvePriority(ctx context.Context, lookups repository.LookupRepository, id string) (*domain.TicketPriority, error) {
	var (
		priority *domain.TicketPriority
		err      error
	)
	if strings.TrimSpace(id) == "" {
		priority, err = lookups.DefaultPriority(ctx)
	} else {
		priority, err = lookups.GetPriority(ctx, id)
	}
	return lookupResult(s.base, priority, err, "priority_id", id)
}

func (s *TicketService) resolveType(ctx context.Context, lookups repository.LookupRepository, id string) (*domain.TicketType, error) {
	var (
		ticketType *domain.TicketType
		err        error
	)
	if strings.TrimSpace(id) == "" {
		ticketType, err = lookups.DefaultType(ctx)
	} else {
		ticketType, err = lookups.GetType(ctx, id)
	}
	return lookupResult(s.base, ticketType, err, "type_id", id)
}

func lookupResult[T any](b base, v *T, err error, field, id string) (*T, error) {
	if err == nil {
		return v, nil
	}
	if apperrors.IsNotFound(err) {
		if id == "" {
			return nil, apperrors.NewValidationError("no default configured", map[string]any{"field": field})
		}
		return nil, apperrors.NewValidationError("unknown reference", map[string]any{"field": field, "id": id})
	}
	return nil, b.storageError("load "+field, err)
}

// GetTicket returns the ticket with its SLA evaluation. User-role callers only see their own tickets.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string, viewer *domain.User) (*TicketView, error) {
	if err := s.authorize(viewer, auth.ResourceTicket, auth.ActionRead); err != nil {
		return nil, err
	}
	ticket, err := s.loadTicket(ctx, s.store.Tickets(), ticketID, false)
	if err != nil {
		return nil, err
	}
	if !s.can(viewer, auth.ResourceTicket, auth.ActionReadAll) && !ticket.VisibleTo(viewer) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	view := s.view(ticket, s.now())
	return &view, nil
}

// ListTickets filters and pages tickets, newest first.
func (s *TicketService) ListTickets(ctx context.Context, viewer *domain.User, filter TicketListFilter) (*TicketPage, error) {
	if err := s.authorize(viewer, auth.ResourceTicket, auth.ActionRead); err != nil {
		return nil, err
	}
	if filter.CreatedFrom != nil && filter.CreatedTo != nil && filter.CreatedTo.Before(*filter.CreatedFrom) {
		return nil, apperrors.NewValidationError("created_to is before created_from", nil)
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	repoFilter := repository.TicketFilter{
		StatusID:    trimmedPtr(filter.StatusID),
		PriorityID:  trimmedPtr(filter.PriorityID),
		AssigneeID:  trimmedPtr(filter.AssigneeID),
		Unassigned:  filter.Unassigned,
		SearchTerm:  trimmedPtr(filter.Search),
		CreatedFrom: filter.CreatedFrom,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	if filter.CreatedTo != nil {
		end := filter.CreatedTo.Truncate(24 * time.Hour).Add(24 * time.Hour)
		repoFilter.CreatedTo = &end
	}
	if !s.can(viewer, auth.ResourceTicket, auth.ActionReadAll) {
		repoFilter.OwnerID = &viewer.ID
		repoFilter.OwnerEmail = viewer.Email
	}

	tickets, err := s.store.Tickets().List(ctx, repoFilter)
	if err != nil {
		return nil, s.storageError("list tickets", err)
	}
	total, err := s.store.Tickets().Count(ctx, repoFilter)
	if err != nil {
		return nil, s.storageError("count tickets", err)
	}

	now := s.now()
	page := &TicketPage{Items: make([]TicketView, 0, len(tickets)), Total: total, Limit: filter.Limit, Offset: filter.Offset}
	for i := range tickets {
		page.Items = append(page.Items, s.view(&tickets[i], now))
	}
	return page, nil
}

// UpdateTicket edits ticket fields. SLA due dates are never recomputed, even when the priority changes.
func (s *TicketService) UpdateTicket(ctx context.Context, ticketID string, actor *domain.User, input TicketUpdateInput) (*TicketView, error) {
	if err := s.authorize(actor, auth.ResourceTicket, auth.ActionUpdate); err != nil {
		return nil, err
	}

	now := s.now()
	var updated *domain.Ticket
	var changes []string

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		ticket, err := s.loadTicket(ctx, tx.Tickets(), ticketID, true)
		if err != nil {
			return err
		}

		if input.Subject != nil {
			subject := strings.TrimSpace(*input.Subject)
			if subject == "" {
				return apperrors.NewValidationError("subject is required", map[string]any{"field": "subject"})
			}
			if subject != ticket.Subject {
				ticket.Subject = subject
				changes = append(changes, "subject")
			}
		}
		if input.Description != nil && strings.TrimSpace(*input.Description) != ticket.Description {
			ticket.Description = strings.TrimSpace(*input.Description)
			changes = append(changes, "description")
		}
		if input.RequesterName != nil && strings.TrimSpace(*input.RequesterName) != ticket.RequesterName {
			ticket.RequesterName = strings.TrimSpace(*input.RequesterName)
			changes = append(changes, "requester_name")
		}
		if input.RequesterEmail != nil && strings.TrimSpace(*input.RequesterEmail) != ticket.RequesterEmail {
			ticket.RequesterEmail = strings.TrimSpace(*input.RequesterEmail)
			changes = append(changes, "requester_email")
		}
		if input.PriorityID != nil && *input.PriorityID != ticket.PriorityID {
			priority, err := s.resolvePriority(ctx, tx.Lookups(), *input.PriorityID)
			if err != nil {
				return err
			}
			ticket.PriorityID = priority.ID
			changes = append(changes, "priority")
		}
		if input.TypeID != nil && *input.TypeID != ticket.TypeID {
			ticketType, err := s.resolveType(ctx, tx.Lookups(), *input.TypeID)
			if err != nil {
				return err
			}
			ticket.TypeID = ticketType.ID
			changes = append(changes, "type")
		}
		switch {
		case input.ClearDueDate:
			if ticket.DueDate != nil {
				ticket.DueDate = nil
				changes = append(changes, "due_date")
			}
		case input.DueDate != nil:
			ticket.DueDate = input.DueDate
			changes = append(changes, "due_date")
		}

		if len(changes) == 0 {
			updated = ticket
			return nil
		}
		ticket.UpdatedAt = now
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return s.storageError("update ticket", err)
		}
		updated = ticket
		return nil
	})
	if err != nil {
		return nil, s.passThrough("update ticket", err)
	}

	if len(changes) > 0 {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventTicketUpdated,
			TicketID: updated.ID,
			Actor:    actorOf(actor),
			Payload:  events.TicketUpdatedPayload{Subject: updated.Subject, Change: strings.Join(changes, ",")},
		})
	}
	view := s.view(updated, now)
	return &view, nil
}

// DeleteTicket removes the ticket with its comments and time entries.
func (s *TicketService) DeleteTicket(ctx context.Context, ticketID string, actor *domain.User) error {
	if err := s.authorize(actor, auth.ResourceTicket, auth.ActionDelete); err != nil {
		return err
	}
	if err := s.store.Tickets().Delete(ctx, ticketID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return s.storageError("delete ticket", err)
	}
	s.logger.Info("ticket deleted", zap.String("ticket_id", ticketID), zap.String("actor_id", actor.ID))
	return nil
}

func (b base) checkAssignee(ctx context.Context, users repository.UserRepository, id string) error {
	assignee, err := users.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewValidationError("assignee does not exist", map[string]any{"assignee_id": id})
		}
		return b.storageError("load assignee", err)
	}
	if !assignee.IsActive || !assignee.Role.IsStaff() {
		return apperrors.NewValidationError("assignee must be an active staff member", map[string]any{"assignee_id": id})
	}
	return nil
}
