package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// ReportsHandler serves cross-ticket work reporting.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// WorkLog GET /time.
func (h *ReportsHandler) WorkLog(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	q, err := parseWorkQuery(c)
	if err != nil {
		return err
	}
	log, err := h.reports.WorkLog(c.UserContext(), user, q)
	if err != nil {
		return err
	}
	resp := dto.WorkLogResponse{
		Entries:         make([]dto.TimeEntryResponse, 0, len(log.Entries)),
		TotalSeconds:    log.TotalSeconds,
		BillableSeconds: log.BillableSeconds,
	}
	for i := range log.Entries {
		resp.Entries = append(resp.Entries, timeEntryResponse(&log.Entries[i]))
	}
	resp.ByUser, resp.ByTicket = totalResponses(log.ByUser, log.ByTicket)
	return data(c, http.StatusOK, resp)
}

// TimeAndExpenses GET /reports/time-expenses.
func (h *ReportsHandler) TimeAndExpenses(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	q, err := parseWorkQuery(c)
	if err != nil {
		return err
	}
	report, err := h.reports.TimeAndExpenses(c.UserContext(), user, q)
	if err != nil {
		return err
	}
	resp := dto.WorkReportResponse{
		From:            reportDay(report.From),
		To:              reportDay(report.To),
		TimeEntries:     report.TimeEntries,
		Expenses:        report.Expenses,
		TotalSeconds:    report.TotalSeconds,
		TotalDuration:   domain.FormatDuration(report.TotalSeconds),
		BillableSeconds: report.BillableSeconds,
		TotalCents:      report.TotalCents,
		TotalAmount:     domain.FormatCents(report.TotalCents),
		BillableCents:   report.BillableCents,
	}
	resp.ByUser, resp.ByTicket = totalResponses(report.ByUser, report.ByTicket)
	return data(c, http.StatusOK, resp)
}

func reportDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
