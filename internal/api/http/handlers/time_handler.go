package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// TimeHandler serves time tracking endpoints.
type TimeHandler struct {
	entries *service.TimeEntryService
}

// NewTimeHandler constructs handler.
func NewTimeHandler(entries *service.TimeEntryService) *TimeHandler {
	return &TimeHandler{entries: entries}
}

// List GET /tickets/:id/time.
func (h *TimeHandler) List(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	sheet, err := h.entries.ListEntries(c.UserContext(), c.Params("id"), user)
	if err != nil {
		return err
	}
	resp := dto.TimeSheetResponse{Entries: make([]dto.TimeEntryResponse, 0, len(sheet.Entries)), TotalSeconds: sheet.TotalSeconds}
	for i := range sheet.Entries {
		resp.Entries = append(resp.Entries, timeEntryResponse(&sheet.Entries[i]))
	}
	return data(c, http.StatusOK, resp)
}

// AddManual POST /tickets/:id/time.
func (h *TimeHandler) AddManual(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.ManualEntryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	entry, err := h.entries.AddManualEntry(c.UserContext(), c.Params("id"), user, service.ManualEntryInput{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
		Billable:  req.Billable,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, timeEntryResponse(entry))
}

// Start POST /tickets/:id/time/start.
func (h *TimeHandler) Start(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.StartTimerRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	entry, err := h.entries.StartTimer(c.UserContext(), c.Params("id"), user, req.Notes, req.Billable)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, timeEntryResponse(entry))
}

// Stop POST /tickets/:id/time/stop.
func (h *TimeHandler) Stop(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.StopTimerRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return err
		}
	}
	entry, err := h.entries.StopTimer(c.UserContext(), c.Params("id"), user, req.Notes)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, timeEntryResponse(entry))
}

// Update PATCH /time/:id.
func (h *TimeHandler) Update(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.UpdateEntryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	entry, err := h.entries.UpdateEntry(c.UserContext(), c.Params("id"), user, service.EntryUpdateInput{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
		Billable:  req.Billable,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, timeEntryResponse(entry))
}

// Delete DELETE /time/:id.
func (h *TimeHandler) Delete(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	if err := h.entries.DeleteEntry(c.UserContext(), c.Params("id"), user); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
