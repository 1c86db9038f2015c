package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TimeEntryService tracks work time on tickets.
type TimeEntryService struct {
	base
}

// NewTimeEntryService constructs the service.
func NewTimeEntryService(deps Dependencies) *TimeEntryService {
	return &TimeEntryService{base: newBase(deps)}
}

// ManualEntryInput describes a completed block of work.
type ManualEntryInput struct {
	StartTime time.Time
	EndTime   time.Time
	Notes     string
	Billable  bool
}

// EntryUpdateInput edits an entry; nil leaves a field unchanged.
type EntryUpdateInput struct {
	StartTime *time.Time
	EndTime   *time.Time
	Notes     *string
	Billable  *bool
}

// TimeSheet lists a ticket's entries with the tracked total.
type TimeSheet struct {
	Entries      []domain.TimeEntry
	TotalSeconds int64
}

// StartTimer opens a running entry for the actor on the ticket.
func (s *TimeEntryService) StartTimer(ctx context.Context, ticketID string, actor *domain.User, notes string, billable bool) (*domain.TimeEntry, error) {
	if err := s.authorize(actor, auth.ResourceTime, auth.ActionCreate); err != nil {
		return nil, err
	}
	entry := &domain.TimeEntry{
		TicketID:  ticketID,
		UserID:    actor.ID,
		StartTime: s.now(),
		Notes:     strings.TrimSpace(notes),
		Billable:  billable,
	}
	entry.CreatedAt = entry.StartTime

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := s.loadTicket(ctx, tx.Tickets(), ticketID, false); err != nil {
			return err
		}
		if _, err := tx.TimeEntries().GetRunning(ctx, ticketID, actor.ID); err == nil {
			return apperrors.NewValidationError("a timer is already running on this ticket", map[string]any{"ticket_id": ticketID})
		} else if !apperrors.IsNotFound(err) {
			return s.storageError("load running timer", err)
		}
		if err := tx.TimeEntries().Create(ctx, entry); err != nil {
			if apperrors.IsDuplicate(err) {
				return apperrors.NewValidationError("a timer is already running on this ticket", map[string]any{"ticket_id": ticketID})
			}
			return s.storageError("create time entry", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.passThrough("start timer", err)
	}
	s.logger.Debug("timer started", zap.String("ticket_id", ticketID), zap.String("user_id", actor.ID))
	return entry, nil
}

// StopTimer closes the actor's running entry, appending notes when given.
func (s *TimeEntryService) StopTimer(ctx context.Context, ticketID string, actor *domain.User, notes string) (*domain.TimeEntry, error) {
	if err := s.authorize(actor, auth.ResourceTime, auth.ActionUpdate); err != nil {
		return nil, err
	}
	now := s.now()
	var entry *domain.TimeEntry

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		running, err := tx.TimeEntries().GetRunning(ctx, ticketID, actor.ID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewNotFound("running timer", map[string]any{"ticket_id": ticketID})
			}
			return s.storageError("load running timer", err)
		}
		running.EndTime = &now
		running.DurationSeconds = int64(now.Sub(running.StartTime) / time.Second)
		if extra := strings.TrimSpace(notes); extra != "" {
			if running.Notes == "" {
				running.Notes = extra
			} else {
				running.Notes += "\n" + extra
			}
		}
		if err := tx.TimeEntries().Update(ctx, running); err != nil {
			return s.storageError("stop timer", err)
		}
		entry = running
		return nil
	})
	if err != nil {
		return nil, s.passThrough("stop timer", err)
	}
	return entry, nil
}

// AddManualEntry records a completed block of work.
func (s *TimeEntryService) AddManualEntry(ctx context.Context, ticketID string, actor *domain.User, input ManualEntryInput) (*domain.TimeEntry, error) {
	if err := s.authorize(actor, auth.ResourceTime, auth.ActionCreate); err != nil {
		return nil, err
	}
	if err := checkInterval(input.StartTime, input.EndTime); err != nil {
		return nil, err
	}
	end := input.EndTime.UTC()
	entry := &domain.TimeEntry{
		TicketID:        ticketID,
		UserID:          actor.ID,
		StartTime:       input.StartTime.UTC(),
		EndTime:         &end,
		DurationSeconds: int64(input.EndTime.Sub(input.StartTime) / time.Second),
		Notes:           strings.TrimSpace(input.Notes),
		Billable:        input.Billable,
		CreatedAt:       s.now(),
	}

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := s.loadTicket(ctx, tx.Tickets(), ticketID, false); err != nil {
			return err
		}
		if err := tx.TimeEntries().Create(ctx, entry); err != nil {
			return s.storageError("create time entry", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.passThrough("add time entry", err)
	}
	return entry, nil
}

// UpdateEntry edits an entry owned by the actor, or any entry for an Administrator.
func (s *TimeEntryService) UpdateEntry(ctx context.Context, entryID string, actor *domain.User, input EntryUpdateInput) (*domain.TimeEntry, error) {
	if err := s.authorize(actor, auth.ResourceTime, auth.ActionUpdate); err != nil {
		return nil, err
	}
	var entry *domain.TimeEntry

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		entry, err = s.ownedEntry(ctx, tx.TimeEntries(), entryID, actor)
		if err != nil {
			return err
		}
		if input.StartTime != nil {
			entry.StartTime = input.StartTime.UTC()
		}
		if input.EndTime != nil {
			end := input.EndTime.UTC()
			entry.EndTime = &end
		}
		if input.Notes != nil {
			entry.Notes = strings.TrimSpace(*input.Notes)
		}
		if input.Billable != nil {
			entry.Billable = *input.Billable
		}
		if entry.EndTime != nil {
			if err := checkInterval(entry.StartTime, *entry.EndTime); err != nil {
				return err
			}
			entry.DurationSeconds = int64(entry.EndTime.Sub(entry.StartTime) / time.Second)
		}
		if err := tx.TimeEntries().Update(ctx, entry); err != nil {
			return s.storageError("update time entry", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.passThrough("update time entry", err)
	}
	return entry, nil
}

// DeleteEntry removes an entry owned by the actor, or any entry for an Administrator.
func (s *TimeEntryService) DeleteEntry(ctx context.Context, entryID string, actor *domain.User) error {
	if err := s.authorize(actor, auth.ResourceTime, auth.ActionUpdate); err != nil {
		return err
	}
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := s.ownedEntry(ctx, tx.TimeEntries(), entryID, actor); err != nil {
			return err
		}
		if err := tx.TimeEntries().Delete(ctx, entryID); err != nil {
			return s.storageError("delete time entry", err)
		}
		return nil
	})
	return s.passThrough("delete time entry", err)
}

// ListEntries returns the ticket's entries and the sum of their durations.
func (s *TimeEntryService) ListEntries(ctx context.Context, ticketID string, viewer *domain.User) (*TimeSheet, error) {
	if err := s.authorize(viewer, auth.ResourceTime, auth.ActionRead); err != nil {
		return nil, err
	}
	if _, err := s.loadTicket(ctx, s.store.Tickets(), ticketID, false); err != nil {
		return nil, err
	}
	entries, err := s.store.TimeEntries().ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, s.storageError("list time entries", err)
	}
	sheet := &TimeSheet{Entries: entries}
	for _, e := range entries {
		sheet.TotalSeconds += e.DurationSeconds
	}
	return sheet, nil
}

func (s *TimeEntryService) ownedEntry(ctx context.Context, repo repository.TimeEntryRepository, id string, actor *domain.User) (*domain.TimeEntry, error) {
	entry, err := repo.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("time entry", map[string]any{"entry_id": id})
		}
		return nil, s.storageError("load time entry", err)
	}
	if entry.UserID != actor.ID && !s.can(actor, auth.ResourceTime, auth.ActionManage) {
		return nil, apperrors.NewForbidden("only the owner or an administrator may change this entry")
	}
	return entry, nil
}

func checkInterval(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return apperrors.NewValidationError("end time must be after start time", map[string]any{"field": "end_time"})
	}
	return nil
}
