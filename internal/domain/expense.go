package domain

import (
	"fmt"
	"time"
)

// Expense is money spent on a ticket. Amounts are kept in cents.
type Expense struct {
	ID          string
	TicketID    string
	UserID      string
	AmountCents int64
	Description string
	Date        time.Time
	Billable    bool
	CreatedAt   time.Time
}

// FormatCents renders an amount as dollars with two decimals.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// FormatDuration renders seconds as HH:MM:SS.
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
