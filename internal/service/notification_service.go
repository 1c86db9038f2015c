package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/mail"
)

// Recipient tokens accepted in notification settings. Anything else is read as a user id or an email address.
const (
	RecipientAllAgents     = "all_agents"
	RecipientAdmin         = "admin"
	RecipientAssignedAgent = "assigned_agent"
	RecipientCreator       = "creator"
	RecipientRequester     = "requester"
)

// Enqueuer accepts outbound messages for asynchronous delivery.
type Enqueuer interface {
	Enqueue(msg mail.Message) error
}

// NotificationService turns domain events into mail deliveries per the notification settings.
type NotificationService struct {
	base
	queue Enqueuer
}

// NewNotificationService constructs the service.
func NewNotificationService(deps Dependencies, queue Enqueuer) *NotificationService {
	return &NotificationService{base: newBase(deps), queue: queue}
}

// RegisterHandlers subscribes to every ticket event.
func (s *NotificationService) RegisterHandlers() {
	events.SubscribeTicketEvents(s.dispatcher, s.handle)
}

type recipient struct {
	email string
	staff bool
}

func (s *NotificationService) handle(ctx context.Context, event events.Event) error {
	setting, ok := s.snapshot().Notification(string(event.Type))
	if !ok || !setting.IsEnabled {
		return nil
	}
	ticket, err := s.store.Tickets().GetByID(ctx, event.TicketID)
	if err != nil {
		return fmt.Errorf("load ticket %s: %w", event.TicketID, err)
	}
	recipients, err := s.resolveRecipients(ctx, setting.Recipients, ticket)
	if err != nil {
		return err
	}

	internal := false
	if p, ok := event.Payload.(events.TicketCommentPayload); ok {
		internal = p.IsInternal
	}

	key := s.snapshot().FormatTicketKey(ticket.Number)
	subject, body := renderNotification(event, key, ticket)
	actorEmail := s.actorEmail(ctx, event.Actor.UserID)
	var errs []string
	for _, r := range recipients {
		if internal && !r.staff {
			continue
		}
		if actorEmail != "" && strings.EqualFold(actorEmail, r.email) {
			continue
		}
		msg := mail.Message{Event: string(event.Type), To: []string{r.email}, Subject: subject, Body: body}
		if err := s.queue.Enqueue(msg); err != nil {
			s.metrics.NotificationSent(string(event.Type), "dropped")
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("enqueue notifications: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (s *NotificationService) actorEmail(ctx context.Context, userID string) string {
	if userID == "" {
		return ""
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return ""
	}
	return user.Email
}

// resolveRecipients expands the comma separated recipient list into deduplicated addresses.
func (s *NotificationService) resolveRecipients(ctx context.Context, tokens string, ticket *domain.Ticket) ([]recipient, error) {
	seen := map[string]struct{}{}
	var out []recipient
	add := func(email string, staff bool) {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			return
		}
		if _, dup := seen[email]; dup {
			return
		}
		seen[email] = struct{}{}
		out = append(out, recipient{email: email, staff: staff})
	}
	addUser := func(id string) {
		user, err := s.store.Users().GetByID(ctx, id)
		if err != nil {
			s.logger.Debug("notification recipient not found", zap.String("user_id", id), zap.Error(err))
			return
		}
		if user.IsActive {
			add(user.Email, user.Role.IsStaff())
		}
	}

	for _, token := range strings.Split(tokens, ",") {
		token = strings.TrimSpace(token)
		switch token {
		case "":
		case RecipientAllAgents, RecipientAdmin:
			roles := []domain.Role{domain.RoleAgent, domain.RoleAdministrator}
			if token == RecipientAdmin {
				roles = []domain.Role{domain.RoleAdministrator}
			}
			users, err := s.store.Users().ListByRole(ctx, roles...)
			if err != nil {
				return nil, fmt.Errorf("list %s recipients: %w", token, err)
			}
			for _, u := range users {
				add(u.Email, true)
			}
		case RecipientAssignedAgent:
			if ticket.AssigneeID != nil {
				addUser(*ticket.AssigneeID)
			}
		case RecipientCreator:
			addUser(ticket.CreatorID)
		case RecipientRequester:
			add(ticket.RequesterEmail, s.isStaffEmail(ctx, ticket.RequesterEmail))
		default:
			if strings.Contains(token, "@") {
				add(token, s.isStaffEmail(ctx, token))
			} else {
				addUser(token)
			}
		}
	}
	return out, nil
}

// isStaffEmail reports whether the address belongs to an active staff account.
func (s *NotificationService) isStaffEmail(ctx context.Context, email string) bool {
	if email == "" {
		return false
	}
	user, err := s.store.Users().GetByLogin(ctx, email)
	return err == nil && user.IsActive && user.Role.IsStaff()
}

func renderNotification(event events.Event, key string, ticket *domain.Ticket) (string, string) {
	switch p := event.Payload.(type) {
	case events.NewTicketPayload:
		return fmt.Sprintf("[%s] New ticket: %s", key, p.Subject),
			fmt.Sprintf("A new %s priority ticket was opened.\n\n%s", p.Priority, ticket.Description)
	case events.TicketUpdatedPayload:
		if p.NewStatus != "" {
			return fmt.Sprintf("[%s] Status changed: %s", key, p.Subject),
				fmt.Sprintf("Status changed from %s to %s.", p.OldStatus, p.NewStatus)
		}
		return fmt.Sprintf("[%s] Ticket updated: %s", key, p.Subject),
			fmt.Sprintf("Updated fields: %s.", p.Change)
	case events.TicketResolvedPayload:
		body := fmt.Sprintf("The ticket was marked %s.", p.Status)
		if p.ResolvedAt != nil {
			body = fmt.Sprintf("The ticket was marked %s at %s.", p.Status, p.ResolvedAt.Format("2006-01-02 15:04 MST"))
		}
		return fmt.Sprintf("[%s] Ticket %s: %s", key, strings.ToLower(p.Status), p.Subject), body
	case events.TicketAssignedPayload:
		if p.AssigneeID == nil {
			return fmt.Sprintf("[%s] Ticket unassigned: %s", key, p.Subject), "The ticket no longer has an assignee."
		}
		return fmt.Sprintf("[%s] Ticket assigned: %s", key, p.Subject), "The ticket has been assigned."
	case events.TicketCommentPayload:
		return fmt.Sprintf("[%s] New comment: %s", key, p.Subject), p.BodyPreview
	}
	return fmt.Sprintf("[%s] %s", key, ticket.Subject), string(event.Type)
}
