package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// TicketsHandler serves ticket CRUD, status changes and assignment.
type TicketsHandler struct {
	tickets     *service.TicketService
	transitions *service.TransitionService
	assignments *service.AssignmentService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, transitions *service.TransitionService, assignments *service.AssignmentService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, transitions: transitions, assignments: assignments}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	view, err := h.tickets.CreateTicket(c.UserContext(), user, service.TicketCreateInput{
		Subject:        req.Subject,
		Description:    req.Description,
		RequesterName:  req.RequesterName,
		RequesterEmail: req.RequesterEmail,
		StatusID:       req.StatusID,
		PriorityID:     req.PriorityID,
		TypeID:         req.TypeID,
		AssigneeID:     req.AssigneeID,
		DueDate:        req.DueDate,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, ticketResponse(view))
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	page, err := h.tickets.ListTickets(c.UserContext(), user, filter)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.TicketListResponse{
		Items:  ticketResponses(page.Items),
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	view, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"), user)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, ticketResponse(view))
}

// UpdateTicket PATCH /tickets/:id.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	view, err := h.tickets.UpdateTicket(c.UserContext(), c.Params("id"), user, service.TicketUpdateInput{
		Subject:        req.Subject,
		Description:    req.Description,
		RequesterName:  req.RequesterName,
		RequesterEmail: req.RequesterEmail,
		PriorityID:     req.PriorityID,
		TypeID:         req.TypeID,
		DueDate:        req.DueDate,
		ClearDueDate:   req.ClearDueDate,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, ticketResponse(view))
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	if err := h.tickets.DeleteTicket(c.UserContext(), c.Params("id"), user); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ChangeStatus POST /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.StatusChangeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.transitions.ApplyStatusChange(c.UserContext(), c.Params("id"), req.StatusID, user)
	if err != nil {
		return err
	}
	resp := dto.TransitionResponse{
		Ticket:    ticketResponse(&res.Ticket),
		OldStatus: res.OldStatusName(),
		NewStatus: res.NewStatus.Name,
		Changed:   res.Changed,
		Resolved:  res.Resolved,
	}
	if res.AuditComment != nil {
		audit := commentResponse(res.AuditComment)
		resp.Audit = &audit
	}
	return data(c, http.StatusOK, resp)
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	view, err := h.assignments.AssignTicket(c.UserContext(), c.Params("id"), req.AssigneeID, user)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, ticketResponse(view))
}

func parseTicketQuery(c *fiber.Ctx) (service.TicketListFilter, error) {
	filter := service.TicketListFilter{
		StatusID:   optionalQuery(c, "status_id"),
		PriorityID: optionalQuery(c, "priority_id"),
		AssigneeID: optionalQuery(c, "assignee_id"),
		Unassigned: c.QueryBool("unassigned", false),
		Search:     optionalQuery(c, "q"),
	}
	var err error
	if filter.CreatedFrom, err = parseDate("created_from", c.Query("created_from")); err != nil {
		return filter, err
	}
	if filter.CreatedTo, err = parseDate("created_to", c.Query("created_to")); err != nil {
		return filter, err
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter, nil
}

// DashboardHandler serves the staff overview.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Summary GET /dashboard.
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	d, err := h.dashboard.Summary(c.UserContext(), user)
	if err != nil {
		return err
	}
	resp := dto.DashboardResponse{
		Total:      d.Total,
		Open:       d.Open,
		Mine:       d.Mine,
		Unassigned: d.Unassigned,
		Overdue:    d.Overdue,
		Breached:   d.Breached,
		AtRisk:     d.AtRisk,
		Recent:     ticketResponses(d.Recent),

		TotalAssets:       d.TotalAssets,
		AssignedAssets:    d.AssignedAssets,
		PublishedArticles: d.PublishedArticles,
	}
	for _, s := range d.ByStatus {
		resp.ByStatus = append(resp.ByStatus, dto.NamedCountResponse{ID: s.ID, Name: s.Name, Count: s.Count})
	}
	for _, p := range d.ByPriority {
		resp.ByPriority = append(resp.ByPriority, dto.NamedCountResponse{ID: p.ID, Name: p.Name, Count: p.Count})
	}
	for _, v := range d.Volume {
		resp.Volume = append(resp.Volume, dto.DailyCountResponse{Date: v.Date.Format(time.DateOnly), Count: v.Count})
	}
	return data(c, http.StatusOK, resp)
}
