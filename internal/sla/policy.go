// Package sla derives SLA due dates for new tickets and classifies SLA clocks against wall-clock time.
package sla

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// State is the classification of one SLA clock.
type State string

const (
	StateNone     State = "none"
	StateOnTrack  State = "on_track"
	StateAtRisk   State = "at_risk"
	StateBreached State = "breached"
	StateMet      State = "met"
)

// Fixed warning windows. They do not vary per priority.
const (
	ResponseAtRiskWindow   = 4 * time.Hour
	ResolutionAtRiskWindow = 8 * time.Hour
)

// Status is the evaluation of both clocks of a ticket.
type Status struct {
	Response   State `json:"response"`
	Resolution State `json:"resolution"`
}

// ComputeDueDates sets the response and resolution due timestamps from the priority targets.
// A nil target leaves the corresponding due date unset. It is only called when a ticket is created.
func ComputeDueDates(ticket *domain.Ticket, priority *domain.TicketPriority, createdAt time.Time) {
	if ticket == nil || priority == nil {
		return
	}
	if priority.SLAResponseTime != nil {
		due := createdAt.Add(time.Duration(*priority.SLAResponseTime) * time.Minute)
		ticket.SLAResponseDue = &due
	}
	if priority.SLAResolutionTime != nil {
		due := createdAt.Add(time.Duration(*priority.SLAResolutionTime) * time.Minute)
		ticket.SLAResolutionDue = &due
	}
}

// Evaluate classifies both clocks. It never mutates the ticket.
func Evaluate(ticket *domain.Ticket, now time.Time) Status {
	return Status{
		Response:   classify(ticket.SLAResponseMet, ticket.SLAResponseDue, now, ResponseAtRiskWindow),
		Resolution: classify(ticket.SLAResolutionMet, ticket.SLAResolutionDue, now, ResolutionAtRiskWindow),
	}
}

func classify(met bool, due *time.Time, now time.Time, window time.Duration) State {
	switch {
	case met:
		return StateMet
	case due == nil:
		return StateNone
	case due.Before(now):
		return StateBreached
	case due.Sub(now) < window:
		return StateAtRisk
	default:
		return StateOnTrack
	}
}

// IsBreached reports whether an open ticket has a passed, unmet response or resolution due date.
func IsBreached(ticket *domain.Ticket, closed bool, now time.Time) bool {
	if closed {
		return false
	}
	return passedUnmet(ticket.SLAResponseMet, ticket.SLAResponseDue, now) ||
		passedUnmet(ticket.SLAResolutionMet, ticket.SLAResolutionDue, now)
}

// IsAtRisk reports whether an open ticket has an unmet clock due within its warning window.
func IsAtRisk(ticket *domain.Ticket, closed bool, now time.Time) bool {
	if closed {
		return false
	}
	return dueWithin(ticket.SLAResponseMet, ticket.SLAResponseDue, now, ResponseAtRiskWindow) ||
		dueWithin(ticket.SLAResolutionMet, ticket.SLAResolutionDue, now, ResolutionAtRiskWindow)
}

// IsOverdue reports whether an open ticket is past its manual due date.
func IsOverdue(ticket *domain.Ticket, closed bool, now time.Time) bool {
	return !closed && ticket.DueDate != nil && ticket.DueDate.Before(now)
}

// MetBy reports whether an event at `at` satisfies a due date. No due date means not met.
func MetBy(due *time.Time, at time.Time) bool {
	return due != nil && !at.After(*due)
}

func passedUnmet(met bool, due *time.Time, now time.Time) bool {
	return due != nil && !met && due.Before(now)
}

func dueWithin(met bool, due *time.Time, now time.Time, window time.Duration) bool {
	return due != nil && !met && due.After(now) && due.Before(now.Add(window))
}
