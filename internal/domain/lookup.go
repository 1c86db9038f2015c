package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

var resolutionStatusNames = map[string]struct{}{
	"resolved":  {},
	"closed":    {},
	"completed": {},
}

// TicketStatus is an administrator-defined lifecycle state.
type TicketStatus struct {
	ID          string
	Name        string
	Description string
	Color       string
	IsDefault   bool
	IsClosed    bool
}

// IsTerminal is the single closure predicate: the flag is set or the name reads as a resolution.
func (s *TicketStatus) IsTerminal() bool {
	if s == nil {
		return false
	}
	if s.IsClosed {
		return true
	}
	_, ok := resolutionStatusNames[NormalizeStatusName(s.Name)]
	return ok
}

// NormalizeStatusName trims and case-folds a status name.
func NormalizeStatusName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// TicketPriority carries the SLA targets, in minutes, used at creation time.
type TicketPriority struct {
	ID                string
	Name              string
	Description       string
	Color             string
	IsDefault         bool
	SLAResponseTime   *int
	SLAResolutionTime *int
}

// TicketType classifies tickets (incident, request, ...).
type TicketType struct {
	ID          string
	Name        string
	Description string
	IsDefault   bool
}
