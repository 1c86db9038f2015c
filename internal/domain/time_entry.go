package domain

import "time"

// TimeEntry records work on a ticket. EndTime is nil while the timer runs.
type TimeEntry struct {
	ID              string
	TicketID        string
	UserID          string
	StartTime       time.Time
	EndTime         *time.Time
	DurationSeconds int64
	Notes           string
	Billable        bool
	CreatedAt       time.Time
}

// Running reports whether the entry has not been stopped.
func (e *TimeEntry) Running() bool {
	return e.EndTime == nil
}
