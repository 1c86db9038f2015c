package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// CommentsHandler serves ticket threads.
type CommentsHandler struct {
	comments *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(comments *service.CommentService) *CommentsHandler {
	return &CommentsHandler{comments: comments}
}

// List GET /tickets/:id/comments.
func (h *CommentsHandler) List(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	comments, err := h.comments.ListComments(c.UserContext(), c.Params("id"), user)
	if err != nil {
		return err
	}
	out := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, commentResponse(&comments[i]))
	}
	return data(c, http.StatusOK, out)
}

// Create POST /tickets/:id/comments.
func (h *CommentsHandler) Create(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.comments.AddComment(c.UserContext(), c.Params("id"), user, service.AddCommentInput{
		Content:    req.Content,
		IsInternal: req.IsInternal,
		ParentID:   req.ParentID,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.CreateCommentResponse{
		Comment:       commentResponse(res.Comment),
		FirstResponse: res.FirstResponse,
		ResponseMet:   res.ResponseMet,
	})
}
