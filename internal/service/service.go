package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/settings"
	"github.com/spec-kit/helpdesk-service/internal/sla"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Clock returns the current instant.
type Clock func() time.Time

// SystemClock is the default Clock.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// Dependencies bundles collaborators shared by every service.
type Dependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Enforcer   *auth.Enforcer
	Settings   *settings.Store
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Clock      Clock
}

type base struct {
	store      repository.Store
	dispatcher events.Dispatcher
	enforcer   *auth.Enforcer
	settings   *settings.Store
	metrics    *observability.Metrics
	logger     *zap.Logger
	clock      Clock
}

func newBase(deps Dependencies) base {
	b := base{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		enforcer:   deps.Enforcer,
		settings:   deps.Settings,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		clock:      deps.Clock,
	}
	if b.clock == nil {
		b.clock = SystemClock
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	return b
}

func (b base) now() time.Time {
	return b.clock().UTC()
}

func (b base) authorize(user *domain.User, resource, action string) error {
	if b.enforcer == nil {
		return apperrors.NewInternalError(fmt.Errorf("authorization enforcer not configured"))
	}
	return b.enforcer.Authorize(user, resource, action)
}

func (b base) can(user *domain.User, resource, action string) bool {
	return user != nil && b.enforcer != nil && b.enforcer.Can(user.Role, resource, action)
}

// storageError logs the cause and returns the generic internal error.
func (b base) storageError(op string, err error) error {
	b.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
	return apperrors.NewInternalError(fmt.Errorf("%s: %w", op, err))
}

// passThrough keeps domain errors raised inside a transaction and wraps everything else.
func (b base) passThrough(op string, err error) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return b.storageError(op, err)
}

func (b base) publishEvent(ctx context.Context, event events.Event) {
	if b.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = b.now()
	}
	if err := b.dispatcher.Publish(ctx, event); err != nil {
		b.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.String("ticket_id", event.TicketID), zap.Error(err))
	}
}

func (b base) snapshot() *settings.Snapshot {
	if b.settings == nil {
		return nil
	}
	return b.settings.Current()
}

func actorOf(user *domain.User) events.Actor {
	return events.Actor{UserID: user.ID, Role: user.Role}
}

// loadTicket maps a missing ticket to NotFound.
func (b base) loadTicket(ctx context.Context, repo repository.TicketRepository, id string, forUpdate bool) (*domain.Ticket, error) {
	var (
		ticket *domain.Ticket
		err    error
	)
	if forUpdate {
		ticket, err = repo.GetForUpdate(ctx, id)
	} else {
		ticket, err = repo.GetByID(ctx, id)
	}
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, b.storageError("load ticket", err)
	}
	return ticket, nil
}

// TicketView is a ticket with its derived SLA state.
type TicketView struct {
	Ticket   *domain.Ticket
	Key      string
	SLA      sla.Status
	Closed   bool
	Breached bool
	AtRisk   bool
	Overdue  bool
}

func (b base) view(ticket *domain.Ticket, now time.Time) TicketView {
	closed := ticket.IsClosed()
	return TicketView{
		Ticket:   ticket,
		Key:      b.snapshot().FormatTicketKey(ticket.Number),
		SLA:      sla.Evaluate(ticket, now),
		Closed:   closed,
		Breached: sla.IsBreached(ticket, closed, now),
		AtRisk:   sla.IsAtRisk(ticket, closed, now),
		Overdue:  sla.IsOverdue(ticket, closed, now),
	}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}
