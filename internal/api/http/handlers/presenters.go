package handlers

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// parseBody decodes the JSON body into req and runs struct validation.
func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(req)
}

func data(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(fiber.Map{"data": v})
}

// parseDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
func parseDate(field, val string) (*time.Time, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, val); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperrors.NewValidationError("invalid date", map[string]any{"field": field, "value": val})
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	if v := strings.TrimSpace(c.Query(key)); v != "" {
		return &v
	}
	return nil
}

func ticketResponse(v *service.TicketView) dto.TicketResponse {
	t := v.Ticket
	resp := dto.TicketResponse{
		ID:               t.ID,
		Key:              v.Key,
		Number:           t.Number,
		Subject:          t.Subject,
		Description:      t.Description,
		RequesterName:    t.RequesterName,
		RequesterEmail:   t.RequesterEmail,
		StatusID:         t.StatusID,
		PriorityID:       t.PriorityID,
		TypeID:           t.TypeID,
		AssigneeID:       t.AssigneeID,
		CreatorID:        t.CreatorID,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		DueDate:          t.DueDate,
		SLAResponseDue:   t.SLAResponseDue,
		SLAResolutionDue: t.SLAResolutionDue,
		SLAResponseMet:   t.SLAResponseMet,
		SLAResolutionMet: t.SLAResolutionMet,
		FirstResponseAt:  t.FirstResponseAt,
		ResolvedAt:       t.ResolvedAt,
		SLA:              v.SLA,
		Closed:           v.Closed,
		Breached:         v.Breached,
		AtRisk:           v.AtRisk,
		Overdue:          v.Overdue,
	}
	if t.Status != nil {
		resp.Status = &dto.StatusResponse{ID: t.Status.ID, Name: t.Status.Name, Color: t.Status.Color, IsClosed: t.Status.IsTerminal()}
	}
	return resp
}

func ticketResponses(views []service.TicketView) []dto.TicketResponse {
	out := make([]dto.TicketResponse, 0, len(views))
	for i := range views {
		out = append(out, ticketResponse(&views[i]))
	}
	return out
}

func commentResponse(c *domain.TicketComment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         c.ID,
		TicketID:   c.TicketID,
		AuthorID:   c.AuthorID,
		Content:    c.Content,
		IsInternal: c.IsInternal,
		ParentID:   c.ParentID,
		CreatedAt:  c.CreatedAt,
	}
}

func timeEntryResponse(e *domain.TimeEntry) dto.TimeEntryResponse {
	return dto.TimeEntryResponse{
		ID:              e.ID,
		TicketID:        e.TicketID,
		UserID:          e.UserID,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		DurationSeconds: e.DurationSeconds,
		Notes:           e.Notes,
		Billable:        e.Billable,
		Running:         e.Running(),
	}
}

func userResponse(u *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

func statusResponse(s *domain.TicketStatus) dto.StatusDetailResponse {
	return dto.StatusDetailResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Color:       s.Color,
		IsDefault:   s.IsDefault,
		IsClosed:    s.IsClosed,
		IsTerminal:  s.IsTerminal(),
	}
}

func priorityResponse(p *domain.TicketPriority) dto.PriorityResponse {
	return dto.PriorityResponse{
		ID:                p.ID,
		Name:              p.Name,
		Description:       p.Description,
		Color:             p.Color,
		IsDefault:         p.IsDefault,
		SLAResponseTime:   p.SLAResponseTime,
		SLAResolutionTime: p.SLAResolutionTime,
	}
}

func typeResponse(t *domain.TicketType) dto.TypeResponse {
	return dto.TypeResponse{ID: t.ID, Name: t.Name, Description: t.Description, IsDefault: t.IsDefault}
}

func lookupInput(req dto.LookupRequest) service.LookupInput {
	return service.LookupInput{Name: req.Name, Description: req.Description, Color: req.Color, IsDefault: req.IsDefault}
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}

func assetResponse(a *domain.Asset) dto.AssetResponse {
	return dto.AssetResponse{
		ID:             a.ID,
		Name:           a.Name,
		AssetType:      string(a.Type),
		SerialNumber:   a.SerialNumber,
		PurchaseDate:   dateString(a.PurchaseDate),
		WarrantyExpiry: dateString(a.WarrantyExpiry),
		Notes:          a.Notes,
		Status:         string(a.Status),
		AssignedToID:   a.AssignedToID,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func assetResponses(assets []domain.Asset) []dto.AssetResponse {
	out := make([]dto.AssetResponse, 0, len(assets))
	for i := range assets {
		out = append(out, assetResponse(&assets[i]))
	}
	return out
}

func categoryResponse(c *domain.KBCategory) dto.CategoryResponse {
	return dto.CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description, ParentID: c.ParentID, CreatedAt: c.CreatedAt}
}

func categoryResponses(categories []domain.KBCategory) []dto.CategoryResponse {
	out := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, categoryResponse(&categories[i]))
	}
	return out
}

func articleResponse(a *domain.KBArticle) dto.ArticleResponse {
	return dto.ArticleResponse{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		CategoryID:  a.CategoryID,
		CreatedBy:   a.CreatedBy,
		UpdatedBy:   a.UpdatedBy,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		IsPublished: a.IsPublished,
		ViewCount:   a.ViewCount,
	}
}

func articleResponses(articles []domain.KBArticle) []dto.ArticleResponse {
	out := make([]dto.ArticleResponse, 0, len(articles))
	for i := range articles {
		out = append(out, articleResponse(&articles[i]))
	}
	return out
}

func expenseResponse(e *domain.Expense) dto.ExpenseResponse {
	return dto.ExpenseResponse{
		ID:          e.ID,
		TicketID:    e.TicketID,
		UserID:      e.UserID,
		AmountCents: e.AmountCents,
		Amount:      domain.FormatCents(e.AmountCents),
		Description: e.Description,
		Date:        e.Date.Format(time.DateOnly),
		Billable:    e.Billable,
		CreatedAt:   e.CreatedAt,
	}
}

func totalResponses(users []service.UserTotal, tickets []service.TicketTotal) ([]dto.UserTotalResponse, []dto.TicketTotalResponse) {
	byUser := make([]dto.UserTotalResponse, 0, len(users))
	for _, u := range users {
		byUser = append(byUser, dto.UserTotalResponse{
			UserID:   u.UserID,
			Name:     u.Name,
			Seconds:  u.Seconds,
			Duration: domain.FormatDuration(u.Seconds),
			Cents:    u.Cents,
			Count:    u.Count,
		})
	}
	byTicket := make([]dto.TicketTotalResponse, 0, len(tickets))
	for _, t := range tickets {
		byTicket = append(byTicket, dto.TicketTotalResponse{
			TicketID: t.TicketID,
			Key:      t.Key,
			Subject:  t.Subject,
			Seconds:  t.Seconds,
			Duration: domain.FormatDuration(t.Seconds),
			Cents:    t.Cents,
			Count:    t.Count,
		})
	}
	return byUser, byTicket
}

// toCents rounds a currency amount to whole cents.
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
