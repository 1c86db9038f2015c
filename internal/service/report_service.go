package service

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// ReportService aggregates logged time and expenses across tickets.
type ReportService struct {
	base
}

// NewReportService constructs the service.
func NewReportService(deps Dependencies) *ReportService {
	return &ReportService{base: newBase(deps)}
}

// WorkLog lists time entries across tickets with totals.
type WorkLog struct {
	Entries         []domain.TimeEntry
	TotalSeconds    int64
	BillableSeconds int64
	ByUser          []UserTotal
	ByTicket        []TicketTotal
}

// WorkReport combines time and expenses over a date range.
type WorkReport struct {
	From            time.Time
	To              time.Time
	TimeEntries     int
	Expenses        int
	TotalSeconds    int64
	BillableSeconds int64
	TotalCents      int64
	BillableCents   int64
	ByUser          []UserTotal
	ByTicket        []TicketTotal
}

// WorkLog returns time entries across tickets matching q.
func (s *ReportService) WorkLog(ctx context.Context, viewer *domain.User, q WorkQuery) (*WorkLog, error) {
	if err := s.authorize(viewer, auth.ResourceTime, auth.ActionRead); err != nil {
		return nil, err
	}
	entries, err := s.store.TimeEntries().List(ctx, q.filter())
	if err != nil {
		return nil, s.storageError("list time entries", err)
	}
	log := &WorkLog{Entries: entries}
	totals := newWorkTotals()
	for _, e := range entries {
		log.TotalSeconds += e.DurationSeconds
		if e.Billable {
			log.BillableSeconds += e.DurationSeconds
		}
		totals.addEntry(e)
	}
	if log.ByUser, log.ByTicket, err = totals.resolve(ctx, s.base); err != nil {
		return nil, err
	}
	return log, nil
}

// TimeAndExpenses reports time and money over q's range. Without dates the range is the
// current month up to today.
func (s *ReportService) TimeAndExpenses(ctx context.Context, viewer *domain.User, q WorkQuery) (*WorkReport, error) {
	if err := s.authorize(viewer, auth.ResourceReport, auth.ActionRead); err != nil {
		return nil, err
	}
	today := s.now().Truncate(day)
	if q.From == nil && q.To == nil {
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		q.From, q.To = &first, &today
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		return nil, apperrors.NewValidationError("date_to must not be before date_from", map[string]any{"field": "date_to"})
	}
	filter := q.filter()

	entries, err := s.store.TimeEntries().List(ctx, filter)
	if err != nil {
		return nil, s.storageError("list time entries", err)
	}
	expenses, err := s.store.Expenses().List(ctx, filter)
	if err != nil {
		return nil, s.storageError("list expenses", err)
	}

	report := &WorkReport{TimeEntries: len(entries), Expenses: len(expenses)}
	if filter.From != nil {
		report.From = *filter.From
	}
	if filter.To != nil {
		report.To = filter.To.Add(-day)
	}
	totals := newWorkTotals()
	for _, e := range entries {
		report.TotalSeconds += e.DurationSeconds
		if e.Billable {
			report.BillableSeconds += e.DurationSeconds
		}
		totals.addEntry(e)
	}
	for _, e := range expenses {
		report.TotalCents += e.AmountCents
		if e.Billable {
			report.BillableCents += e.AmountCents
		}
		totals.addExpense(e)
	}
	if report.ByUser, report.ByTicket, err = totals.resolve(ctx, s.base); err != nil {
		return nil, err
	}
	return report, nil
}

type workTotals struct {
	users   map[string]*UserTotal
	tickets map[string]*TicketTotal
}

func newWorkTotals() *workTotals {
	return &workTotals{users: map[string]*UserTotal{}, tickets: map[string]*TicketTotal{}}
}

func (w *workTotals) rows(userID, ticketID string) (*UserTotal, *TicketTotal) {
	u, ok := w.users[userID]
	if !ok {
		u = &UserTotal{UserID: userID}
		w.users[userID] = u
	}
	t, ok := w.tickets[ticketID]
	if !ok {
		t = &TicketTotal{TicketID: ticketID}
		w.tickets[ticketID] = t
	}
	return u, t
}

func (w *workTotals) addEntry(e domain.TimeEntry) {
	u, t := w.rows(e.UserID, e.TicketID)
	u.Seconds += e.DurationSeconds
	u.Count++
	t.Seconds += e.DurationSeconds
	t.Count++
}

func (w *workTotals) addExpense(e domain.Expense) {
	u, t := w.rows(e.UserID, e.TicketID)
	u.Cents += e.AmountCents
	u.Count++
	t.Cents += e.AmountCents
	t.Count++
}

// resolve names each row and orders both lists by time, then money, descending.
func (w *workTotals) resolve(ctx context.Context, b base) ([]UserTotal, []TicketTotal, error) {
	users := make([]UserTotal, 0, len(w.users))
	for id, row := range w.users {
		user, err := b.store.Users().GetByID(ctx, id)
		switch {
		case err == nil:
			row.Name = user.FullName()
			if row.Name == "" {
				row.Name = user.Username
			}
		case !apperrors.IsNotFound(err):
			return nil, nil, b.storageError("load user", err)
		}
		users = append(users, *row)
	}
	tickets := make([]TicketTotal, 0, len(w.tickets))
	for id, row := range w.tickets {
		ticket, err := b.store.Tickets().GetByID(ctx, id)
		switch {
		case err == nil:
			row.Key = b.snapshot().FormatTicketKey(ticket.Number)
			row.Subject = ticket.Subject
		case !apperrors.IsNotFound(err):
			return nil, nil, b.storageError("load ticket", err)
		}
		tickets = append(tickets, *row)
	}
	sort.Slice(users, func(i, j int) bool {
		return heavier(users[i].Seconds, users[i].Cents, users[i].UserID, users[j].Seconds, users[j].Cents, users[j].UserID)
	})
	sort.Slice(tickets, func(i, j int) bool {
		return heavier(tickets[i].Seconds, tickets[i].Cents, tickets[i].TicketID, tickets[j].Seconds, tickets[j].Cents, tickets[j].TicketID)
	})
	return users, tickets, nil
}

func heavier(secA, centsA int64, idA string, secB, centsB int64, idB string) bool {
	if secA != secB {
		return secA > secB
	}
	if centsA != centsB {
		return centsA > centsB
	}
	return idA < idB
}
