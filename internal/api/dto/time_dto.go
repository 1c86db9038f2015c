package dto

import "time"

// StartTimerRequest payload.
type StartTimerRequest struct {
	Notes    string `json:"notes" validate:"max=2000"`
	Billable bool   `json:"billable"`
}

// StopTimerRequest payload.
type StopTimerRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// ManualEntryRequest payload.
type ManualEntryRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
	Notes     string    `json:"notes" validate:"max=2000"`
	Billable  bool      `json:"billable"`
}

// UpdateEntryRequest payload.
type UpdateEntryRequest struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Notes     *string    `json:"notes" validate:"omitempty,max=2000"`
	Billable  *bool      `json:"billable"`
}

// TimeEntryResponse represents a time entry.
type TimeEntryResponse struct {
	ID              string     `json:"id"`
	TicketID        string     `json:"ticket_id"`
	UserID          string     `json:"user_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationSeconds int64      `json:"duration_seconds"`
	Notes           string     `json:"notes"`
	Billable        bool       `json:"billable"`
	Running         bool       `json:"running"`
}

// TimeSheetResponse lists entries with the total.
type TimeSheetResponse struct {
	Entries      []TimeEntryResponse `json:"entries"`
	TotalSeconds int64               `json:"total_seconds"`
}
