package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// AdminHandler serves lookup, user and settings administration, plus the public lookup list.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Lookups GET /lookups.
func (h *AdminHandler) Lookups(c *fiber.Ctx) error {
	ctx := c.UserContext()
	statuses, err := h.admin.ListStatuses(ctx)
	if err != nil {
		return err
	}
	priorities, err := h.admin.ListPriorities(ctx)
	if err != nil {
		return err
	}
	types, err := h.admin.ListTypes(ctx)
	if err != nil {
		return err
	}
	resp := dto.LookupsResponse{
		Statuses:   make([]dto.StatusDetailResponse, 0, len(statuses)),
		Priorities: make([]dto.PriorityResponse, 0, len(priorities)),
		Types:      make([]dto.TypeResponse, 0, len(types)),
	}
	for i := range statuses {
		resp.Statuses = append(resp.Statuses, statusResponse(&statuses[i]))
	}
	for i := range priorities {
		resp.Priorities = append(resp.Priorities, priorityResponse(&priorities[i]))
	}
	for i := range types {
		resp.Types = append(resp.Types, typeResponse(&types[i]))
	}
	return data(c, http.StatusOK, resp)
}

// ListPriorities GET /admin/priorities.
func (h *AdminHandler) ListPriorities(c *fiber.Ctx) error {
	priorities, err := h.admin.ListPriorities(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.PriorityResponse, 0, len(priorities))
	for i := range priorities {
		out = append(out, priorityResponse(&priorities[i]))
	}
	return data(c, http.StatusOK, out)
}

// CreatePriority POST /admin/priorities.
func (h *AdminHandler) CreatePriority(c *fiber.Ctx) error {
	return h.writePriority(c, true)
}

// UpdatePriority PATCH /admin/priorities/:id.
func (h *AdminHandler) UpdatePriority(c *fiber.Ctx) error {
	return h.writePriority(c, false)
}

func (h *AdminHandler) writePriority(c *fiber.Ctx, create bool) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.PriorityRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	in := service.PriorityInput{
		LookupInput:       lookupInput(req.LookupRequest),
		SLAResponseTime:   req.SLAResponseTime,
		SLAResolutionTime: req.SLAResolutionTime,
		ClearResponse:     req.ClearResponse,
		ClearResolution:   req.ClearResolution,
	}
	var priority *domain.TicketPriority
	status := http.StatusOK
	if create {
		priority, err = h.admin.CreatePriority(c.UserContext(), user, in)
		status = http.StatusCreated
	} else {
		priority, err = h.admin.UpdatePriority(c.UserContext(), user, c.Params("id"), in)
	}
	if err != nil {
		return err
	}
	return data(c, status, priorityResponse(priority))
}

// ListStatuses GET /admin/statuses.
func (h *AdminHandler) ListStatuses(c *fiber.Ctx) error {
	statuses, err := h.admin.ListStatuses(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.StatusDetailResponse, 0, len(statuses))
	for i := range statuses {
		out = append(out, statusResponse(&statuses[i]))
	}
	return data(c, http.StatusOK, out)
}

// CreateStatus POST /admin/statuses.
func (h *AdminHandler) CreateStatus(c *fiber.Ctx) error {
	return h.writeStatus(c, true)
}

// UpdateStatus PATCH /admin/statuses/:id.
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	return h.writeStatus(c, false)
}

func (h *AdminHandler) writeStatus(c *fiber.Ctx, create bool) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.StatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	in := service.StatusInput{LookupInput: lookupInput(req.LookupRequest), IsClosed: req.IsClosed}
	var st *domain.TicketStatus
	status := http.StatusOK
	if create {
		st, err = h.admin.CreateStatus(c.UserContext(), user, in)
		status = http.StatusCreated
	} else {
		st, err = h.admin.UpdateStatus(c.UserContext(), user, c.Params("id"), in)
	}
	if err != nil {
		return err
	}
	return data(c, status, statusResponse(st))
}

// ListTypes GET /admin/types.
func (h *AdminHandler) ListTypes(c *fiber.Ctx) error {
	types, err := h.admin.ListTypes(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.TypeResponse, 0, len(types))
	for i := range types {
		out = append(out, typeResponse(&types[i]))
	}
	return data(c, http.StatusOK, out)
}

// CreateType POST /admin/types.
func (h *AdminHandler) CreateType(c *fiber.Ctx) error {
	return h.writeType(c, true)
}

// UpdateType PATCH /admin/types/:id.
func (h *AdminHandler) UpdateType(c *fiber.Ctx) error {
	return h.writeType(c, false)
}

func (h *AdminHandler) writeType(c *fiber.Ctx, create bool) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.LookupRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	var t *domain.TicketType
	status := http.StatusOK
	if create {
		t, err = h.admin.CreateType(c.UserContext(), user, lookupInput(req))
		status = http.StatusCreated
	} else {
		t, err = h.admin.UpdateType(c.UserContext(), user, c.Params("id"), lookupInput(req))
	}
	if err != nil {
		return err
	}
	return data(c, status, typeResponse(t))
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	users, err := h.admin.ListUsers(c.UserContext(), user)
	if err != nil {
		return err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}
	return data(c, http.StatusOK, out)
}

// CreateUser POST /admin/users.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	actor, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.UserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	created, err := h.admin.CreateUser(c.UserContext(), actor, userInput(req))
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, userResponse(created))
}

// UpdateUser PATCH /admin/users/:id.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	actor, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.UserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	updated, err := h.admin.UpdateUser(c.UserContext(), actor, c.Params("id"), userInput(req))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, userResponse(updated))
}

// ResetPassword POST /admin/users/:id/reset-password.
func (h *AdminHandler) ResetPassword(c *fiber.Ctx) error {
	actor, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.ResetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.admin.ResetPassword(c.UserContext(), actor, c.Params("id"), req.Password); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func userInput(req dto.UserRequest) service.UserInput {
	return service.UserInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Role:      req.Role,
		IsActive:  req.IsActive,
	}
}

// GetSettings GET /admin/settings.
func (h *AdminHandler) GetSettings(c *fiber.Ctx) error {
	actor, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	view, err := h.admin.GetSettings(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, settingsResponse(view))
}

// UpdateSettings PUT /admin/settings.
func (h *AdminHandler) UpdateSettings(c *fiber.Ctx) error {
	actor, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.SettingsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	view, err := h.admin.UpdateSettings(c.UserContext(), actor, req.Values)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, settingsResponse(view))
}

// UpdateNotification PUT /admin/settings/notifications/:event.
func (h *AdminHandler) UpdateNotification(c *fiber.Ctx) error {
	actor, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.NotificationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	n, err := h.admin.UpdateNotification(c.UserContext(), actor, domain.NotificationSetting{
		EventType:  c.Params("event"),
		IsEnabled:  req.IsEnabled,
		Recipients: req.Recipients,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NotificationResponse{EventType: n.EventType, IsEnabled: n.IsEnabled, Recipients: n.Recipients})
}

// ReloadSettings POST /admin/settings/reload.
func (h *AdminHandler) ReloadSettings(c *fiber.Ctx) error {
	actor, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	if err := h.admin.Reload(c.UserContext(), actor); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func settingsResponse(view *service.SettingsView) dto.SettingsResponse {
	resp := dto.SettingsResponse{
		Settings:      make([]dto.SettingResponse, 0, len(view.Settings)),
		Notifications: make([]dto.NotificationResponse, 0, len(view.Notifications)),
	}
	for _, s := range view.Settings {
		resp.Settings = append(resp.Settings, dto.SettingResponse{Key: s.Key, Value: s.Value, Description: s.Description})
	}
	for _, n := range view.Notifications {
		resp.Notifications = append(resp.Notifications, dto.NotificationResponse{EventType: n.EventType, IsEnabled: n.IsEnabled, Recipients: n.Recipients})
	}
	return resp
}
