package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// ExpensesHandler serves ticket expense endpoints.
type ExpensesHandler struct {
	expenses *service.ExpenseService
}

// NewExpensesHandler constructs handler.
func NewExpensesHandler(expenses *service.ExpenseService) *ExpensesHandler {
	return &ExpensesHandler{expenses: expenses}
}

// Add POST /tickets/:id/expenses.
func (h *ExpensesHandler) Add(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.ExpenseRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return err
	}
	if date == nil {
		return apperrors.NewValidationError("date is required", map[string]any{"field": "date"})
	}
	expense, err := h.expenses.AddExpense(c.UserContext(), c.Params("id"), user, service.ExpenseInput{
		AmountCents: toCents(req.Amount),
		Description: req.Description,
		Date:        *date,
		Billable:    req.Billable,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, expenseResponse(expense))
}

// List GET /expenses.
func (h *ExpensesHandler) List(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	q, err := parseWorkQuery(c)
	if err != nil {
		return err
	}
	sheet, err := h.expenses.ListExpenses(c.UserContext(), user, q)
	if err != nil {
		return err
	}
	resp := dto.ExpenseSheetResponse{
		Expenses:      make([]dto.ExpenseResponse, 0, len(sheet.Expenses)),
		TotalCents:    sheet.TotalCents,
		BillableCents: sheet.BillableCents,
	}
	for i := range sheet.Expenses {
		resp.Expenses = append(resp.Expenses, expenseResponse(&sheet.Expenses[i]))
	}
	resp.ByUser, resp.ByTicket = totalResponses(sheet.ByUser, sheet.ByTicket)
	return data(c, http.StatusOK, resp)
}

// Update PATCH /expenses/:id.
func (h *ExpensesHandler) Update(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateExpenseRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	in := service.ExpenseUpdateInput{Description: req.Description, Billable: req.Billable}
	if req.Amount != nil {
		cents := toCents(*req.Amount)
		in.AmountCents = &cents
	}
	if req.Date != nil {
		if strings.TrimSpace(*req.Date) == "" {
			return apperrors.NewValidationError("date is required", map[string]any{"field": "date"})
		}
		if in.Date, err = parseDate("date", *req.Date); err != nil {
			return err
		}
	}
	expense, err := h.expenses.UpdateExpense(c.UserContext(), c.Params("id"), user, in)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, expenseResponse(expense))
}

// Delete DELETE /expenses/:id.
func (h *ExpensesHandler) Delete(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	if err := h.expenses.DeleteExpense(c.UserContext(), c.Params("id"), user); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// parseWorkQuery reads user_id, ticket_id, date_from, date_to and billable_only.
func parseWorkQuery(c *fiber.Ctx) (service.WorkQuery, error) {
	q := service.WorkQuery{
		UserID:       optionalQuery(c, "user_id"),
		TicketID:     optionalQuery(c, "ticket_id"),
		BillableOnly: c.QueryBool("billable_only"),
	}
	var err error
	if q.From, err = parseDate("date_from", c.Query("date_from")); err != nil {
		return q, err
	}
	if q.To, err = parseDate("date_to", c.Query("date_to")); err != nil {
		return q, err
	}
	return q, nil
}
