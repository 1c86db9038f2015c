package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AuthService handles login and password changes.
type AuthService struct {
	base
	tokens     *auth.TokenManager
	bcryptCost int
}

// NewAuthService constructs the service.
func NewAuthService(deps Dependencies, tokens *auth.TokenManager, bcryptCost int) *AuthService {
	return &AuthService{base: newBase(deps), tokens: tokens, bcryptCost: bcryptCost}
}

// LoginResult carries the issued token.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Login checks credentials by username or email. Unknown users, wrong passwords and inactive
// accounts all fail with the same Unauthorized error.
func (s *AuthService) Login(ctx context.Context, login, password string) (*LoginResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, apperrors.NewValidationError("login and password are required", nil)
	}
	user, err := s.store.Users().GetByLogin(ctx, login)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, s.storageError("load user", err)
	}
	if !user.IsActive || auth.ComparePassword(user.PasswordHash, password) != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	now := s.now()
	if err := s.store.Users().TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("update last login failed", zap.String("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &now
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ChangePassword replaces the caller's password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, user *domain.User, current, next string) error {
	if user == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if auth.ComparePassword(user.PasswordHash, current) != nil {
		return apperrors.NewValidationError("current password is incorrect", map[string]any{"field": "current_password"})
	}
	if err := auth.ValidatePassword(next); err != nil {
		return err
	}
	if current == next {
		return apperrors.NewValidationError("new password must differ from the current one", map[string]any{"field": "new_password"})
	}
	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.store.Users().UpdatePassword(ctx, user.ID, hash, false); err != nil {
		return s.storageError("change password", err)
	}
	return nil
}

// EnsureBootstrapAdmin creates an Administrator with the given credentials unless the email is taken.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.store.Users().GetByLogin(ctx, email); err == nil {
		return nil
	} else if !apperrors.IsNotFound(err) {
		return s.storageError("load bootstrap admin", err)
	}
	if err := auth.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	username := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		username = email[:at]
	}
	admin := &domain.User{
		Username:            username,
		Email:               email,
		PasswordHash:        hash,
		Role:                domain.RoleAdministrator,
		IsActive:            true,
		ForcePasswordChange: true,
		CreatedAt:           s.now(),
	}
	if err := s.store.Users().Create(ctx, admin); err != nil {
		if apperrors.IsDuplicate(err) {
			return nil
		}
		return s.storageError("create bootstrap admin", err)
	}
	s.logger.Info("bootstrap administrator created", zap.String("user_id", admin.ID), zap.String("email", email))
	return nil
}
