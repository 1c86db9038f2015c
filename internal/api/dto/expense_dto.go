package dto

import "time"

// ExpenseRequest payload. Amount is in currency units with at most two decimals.
type ExpenseRequest struct {
	Amount      float64 `json:"amount" validate:"required,gte=0.01"`
	Description string  `json:"description" validate:"required,max=255"`
	Date        string  `json:"date" validate:"required"`
	Billable    bool    `json:"billable"`
}

// UpdateExpenseRequest payload.
type UpdateExpenseRequest struct {
	Amount      *float64 `json:"amount" validate:"omitempty,gte=0.01"`
	Description *string  `json:"description" validate:"omitempty,max=255"`
	Date        *string  `json:"date"`
	Billable    *bool    `json:"billable"`
}

// ExpenseResponse represents an expense.
type ExpenseResponse struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticket_id"`
	UserID      string    `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Amount      string    `json:"amount"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Billable    bool      `json:"billable"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserTotalResponse sums one user's work.
type UserTotalResponse struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Seconds  int64  `json:"seconds"`
	Duration string `json:"duration"`
	Cents    int64  `json:"amount_cents"`
	Count    int    `json:"count"`
}

// TicketTotalResponse sums the work on one ticket.
type TicketTotalResponse struct {
	TicketID string `json:"ticket_id"`
	Key      string `json:"key"`
	Subject  string `json:"subject"`
	Seconds  int64  `json:"seconds"`
	Duration string `json:"duration"`
	Cents    int64  `json:"amount_cents"`
	Count    int    `json:"count"`
}

// ExpenseSheetResponse lists expenses with totals.
type ExpenseSheetResponse struct {
	Expenses      []ExpenseResponse     `json:"expenses"`
	TotalCents    int64                 `json:"total_cents"`
	BillableCents int64                 `json:"billable_cents"`
	ByUser        []UserTotalResponse   `json:"by_user"`
	ByTicket      []TicketTotalResponse `json:"by_ticket"`
}

// WorkLogResponse lists time entries across tickets with totals.
type WorkLogResponse struct {
	Entries         []TimeEntryResponse   `json:"entries"`
	TotalSeconds    int64                 `json:"total_seconds"`
	BillableSeconds int64                 `json:"billable_seconds"`
	ByUser          []UserTotalResponse   `json:"by_user"`
	ByTicket        []TicketTotalResponse `json:"by_ticket"`
}

// WorkReportResponse combines time and expenses over a date range.
type WorkReportResponse struct {
	From            string                `json:"date_from"`
	To              string                `json:"date_to"`
	TimeEntries     int                   `json:"time_entries"`
	Expenses        int                   `json:"expenses"`
	TotalSeconds    int64                 `json:"total_seconds"`
	TotalDuration   string                `json:"total_duration"`
	BillableSeconds int64                 `json:"billable_seconds"`
	TotalCents      int64                 `json:"total_cents"`
	TotalAmount     string                `json:"total_amount"`
	BillableCents   int64                 `json:"billable_cents"`
	ByUser          []UserTotalResponse   `json:"by_user"`
	ByTicket        []TicketTotalResponse `json:"by_ticket"`
}
