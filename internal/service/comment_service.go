package service

import (
	"context"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const commentPreviewLength = 140

// CommentService records ticket comments and tracks the first staff response.
type CommentService struct {
	base
	policy *bluemonday.Policy
}

// NewCommentService constructs the service.
func NewCommentService(deps Dependencies) *CommentService {
	return &CommentService{base: newBase(deps), policy: bluemonday.UGCPolicy()}
}

// AddCommentInput describes a new comment.
type AddCommentInput struct {
	Content    string
	IsInternal bool
	ParentID   *string
}

// CommentResult reports the stored comment and whether it was the first response.
type CommentResult struct {
	Comment       *domain.TicketComment
	FirstResponse bool
	ResponseMet   bool
}

// AddComment validates, then inserts the comment and, for staff authors, sets first_response_at
// if it is still unset. Both writes share one transaction.
func (s *CommentService) AddComment(ctx context.Context, ticketID string, author *domain.User, input AddCommentInput) (*CommentResult, error) {
	if err := s.authorize(author, auth.ResourceComment, auth.ActionCreate); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(s.policy.Sanitize(input.Content))
	if content == "" {
		return nil, apperrors.NewValidationError("comment content is required", map[string]any{"field": "content"})
	}
	if input.IsInternal && !s.can(author, auth.ResourceComment, auth.ActionInternal) {
		return nil, apperrors.NewForbidden("only staff may post internal comments")
	}
	parentID := trimmedPtr(input.ParentID)

	now := s.now()
	result := &CommentResult{}
	var ticket *domain.Ticket

	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		ticket, err = s.loadTicket(ctx, tx.Tickets(), ticketID, false)
		if err != nil {
			return err
		}
		if !author.Role.IsStaff() && !ticket.VisibleTo(author) {
			return apperrors.NewForbidden("you may only comment on your own tickets")
		}
		if parentID != nil {
			parent, err := tx.Comments().GetByID(ctx, *parentID)
			if err != nil && !apperrors.IsNotFound(err) {
				return s.storageError("load parent comment", err)
			}
			if parent == nil || parent.TicketID != ticket.ID {
				return apperrors.NewInvalidParent(*parentID)
			}
			if parent.IsInternal && !author.Role.IsStaff() {
				return apperrors.NewInvalidParent(*parentID)
			}
		}

		comment := &domain.TicketComment{
			TicketID:   ticket.ID,
			AuthorID:   author.ID,
			Content:    content,
			IsInternal: input.IsInternal,
			ParentID:   parentID,
			CreatedAt:  now,
		}
		if err := tx.Comments().Create(ctx, comment); err != nil {
			return s.storageError("insert comment", err)
		}
		result.Comment = comment

		if !author.Role.IsStaff() {
			return nil
		}
		first, err := tx.Tickets().MarkFirstResponse(ctx, ticket.ID, now)
		if err != nil {
			return s.storageError("mark first response", err)
		}
		result.FirstResponse = first
		if first {
			result.ResponseMet = ticket.SLAResponseDue != nil && !now.After(*ticket.SLAResponseDue)
		}
		return nil
	})
	if err != nil {
		return nil, s.passThrough("add comment", err)
	}

	if result.FirstResponse {
		s.metrics.FirstResponse(result.ResponseMet)
		s.logger.Info("first response recorded", zap.String("ticket_id", ticket.ID), zap.Bool("sla_met", result.ResponseMet))
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketComment,
		TicketID: ticket.ID,
		Actor:    actorOf(author),
		Payload: events.TicketCommentPayload{
			Subject:     ticket.Subject,
			CommentID:   result.Comment.ID,
			IsInternal:  result.Comment.IsInternal,
			BodyPreview: stringPreview(result.Comment.Content, commentPreviewLength),
		},
	})
	return result, nil
}

// ListComments returns the thread in creation order. Internal comments are hidden from User-role viewers.
func (s *CommentService) ListComments(ctx context.Context, ticketID string, viewer *domain.User) ([]domain.TicketComment, error) {
	if err := s.authorize(viewer, auth.ResourceComment, auth.ActionRead); err != nil {
		return nil, err
	}
	ticket, err := s.loadTicket(ctx, s.store.Tickets(), ticketID, false)
	if err != nil {
		return nil, err
	}
	staff := s.can(viewer, auth.ResourceComment, auth.ActionReadAll)
	if !staff && !ticket.VisibleTo(viewer) {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}

	comments, err := s.store.Comments().ListByTicket(ctx, ticketID, staff)
	if err != nil {
		return nil, s.storageError("list comments", err)
	}
	if comments == nil {
		comments = []domain.TicketComment{}
	}
	return comments, nil
}
