package service

import (
	"context"
	"net/mail"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/settings"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AdminService manages lookups, users and settings. Every operation requires the admin resource.
type AdminService struct {
	base
	broadcaster settings.Broadcaster
	bcryptCost  int
}

// NewAdminService constructs the service. broadcaster announces settings changes to other instances.
func NewAdminService(deps Dependencies, broadcaster settings.Broadcaster, bcryptCost int) *AdminService {
	if broadcaster == nil {
		broadcaster = settings.NoopBroadcaster()
	}
	return &AdminService{base: newBase(deps), broadcaster: broadcaster, bcryptCost: bcryptCost}
}

// LookupInput carries the fields shared by statuses, priorities and types. Nil leaves a field unchanged on update.
type LookupInput struct {
	Name        *string
	Description *string
	Color       *string
	IsDefault   *bool
}

// StatusInput adds the closed flag.
type StatusInput struct {
	LookupInput
	IsClosed *bool
}

// PriorityInput adds SLA targets in minutes. ClearResponse and ClearResolution null them out.
type PriorityInput struct {
	LookupInput
	SLAResponseTime   *int
	SLAResolutionTime *int
	ClearResponse     bool
	ClearResolution   bool
}

// UserInput describes an account. Password is only read on create.
type UserInput struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Password  string
	Role      *string
	IsActive  *bool
}

// SettingsView is the admin read model of the settings snapshot.
type SettingsView struct {
	Settings      []domain.Setting
	Notifications []domain.NotificationSetting
}

func (s *AdminService) admin(actor *domain.User) error {
	return s.authorize(actor, auth.ResourceAdmin, auth.ActionManage)
}

func requireName(in LookupInput) (string, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return "", apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	return strings.TrimSpace(*in.Name), nil
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func (s *AdminService) lookupWriteError(op string, err error) error {
	if apperrors.IsDuplicate(err) {
		return apperrors.NewConflict("name already in use", nil)
	}
	if apperrors.IsNotFound(err) {
		return apperrors.NewNotFound(op, nil)
	}
	return s.passThrough(op, err)
}

// ListStatuses returns every status.
func (s *AdminService) ListStatuses(ctx context.Context) ([]domain.TicketStatus, error) {
	statuses, err := s.store.Lookups().ListStatuses(ctx)
	if err != nil {
		return nil, s.storageError("list statuses", err)
	}
	return statuses, nil
}

// ListPriorities returns every priority.
func (s *AdminService) ListPriorities(ctx context.Context) ([]domain.TicketPriority, error) {
	priorities, err := s.store.Lookups().ListPriorities(ctx)
	if err != nil {
		return nil, s.storageError("list priorities", err)
	}
	return priorities, nil
}

// ListTypes returns every ticket type.
func (s *AdminService) ListTypes(ctx context.Context) ([]domain.TicketType, error) {
	types, err := s.store.Lookups().ListTypes(ctx)
	if err != nil {
		return nil, s.storageError("list types", err)
	}
	return types, nil
}

// CreateStatus adds a status. A new default clears the previous one in the same transaction.
func (s *AdminService) CreateStatus(ctx context.Context, actor *domain.User, in StatusInput) (*domain.TicketStatus, error) {
	if err := s.admin(actor); err != nil {
		return nil, err
	}
	name, err := requireName(in.LookupInput)
	if err != nil {
		return nil, err
	}
	status := &domain.TicketStatus{Name: name}
	applyStatus(status, in)

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Lookups().CreateStatus(ctx, status); err != nil {
			return err
		}
		if status.IsDefault {
			return tx.Lookups().ClearDefaultStatus(ctx, status.ID)
		}
		return nil
	})
	if err != nil {
		return nil, s.lookupWriteError("status", err)
	}
	return status, nil
}

// UpdateStatus edits a status.
func (s *AdminService) UpdateStatus(ctx context.Context, actor *domain.User, id string, in StatusInput) (*domain.TicketStatus, error) {
	if err := s.admin(actor); err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	var status *domain.TicketStatus
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		if status, err = tx.Lookups().GetStatus(ctx, id); err != nil {
			return err
		}
		applyStatus(status, in)
		if err := tx.Lookups().UpdateStatus(ctx, status); err != nil {
			return err
		}
		if status.IsDefault {
			return tx.Lookups().ClearDefaultStatus(ctx, status.ID)
		}
		return nil
	})
	if err != nil {
		return nil, s.lookupWriteError("status", err)
	}
	return status, nil
}

func applyStatus(status *domain.TicketStatus, in StatusInput) {
	applyString(&status.Name, in.Name)
	applyString(&status.Description, in.Description)
	applyString(&status.Color, in.Color)
	if in.IsDefault != nil {
		status.IsDefault = *in.IsDefault
	}
	if in.IsClosed != nil {
		status.IsClosed = *in.IsClosed
	}
}

// CreatePriority adds a priority. SLA minutes must be positive when set.
func (s *AdminService) CreatePriority(ctx context.Context, actor *domain.User, in PriorityInput) (*domain.TicketPriority, error) {
	if err := s.admin(actor); err != nil {
		return nil, err
	}
	name, err := requireName(in.LookupInput)
	if err != nil {
		return nil, err
	}
	priority := &domain.TicketPriority{Name: name}
	if err := applyPriority(priority, in); err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Lookups().CreatePriority(ctx, priority); err != nil {
			return err
		}
		if priority.IsDefault {
			return tx.Lookups().ClearDefaultPriority(ctx, priority.ID)
		}
		return nil
	})
	if err != nil {
		return nil, s.lookupWriteError("priority", err)
	}
	return priority, nil
}

// UpdatePriority edits a priority. Existing tickets keep their due dates.
func (s *AdminService) UpdatePriority(ctx context.Context, actor *domain.User, id string, in PriorityInput) (*domain.TicketPriority, error) {
	if err := s.admin(actor); err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	var priority *domain.TicketPriority
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		if priority, err = tx.Lookups().GetPriority(ctx, id); err != nil {
			return err
		}
		if err := applyPriority(priority, in); err != nil {
			return err
		}
		if err := tx.Lookups().UpdatePriority(ctx, priority); err != nil {
			return err
		}
		if priority.IsDefault {
			return tx.Lookups().ClearDefaultPriority(ctx, priority.ID)
		}
		return nil
	})
	if err != nil {
		return nil, s.lookupWriteError("priority", err)
	}
	return priority, nil
}

func applyPriority(priority *domain.TicketPriority, in PriorityInput) error {
	for field, v := range map[string]*int{"sla_response_time": in.SLAResponseTime, "sla_resolution_time": in.SLAResolutionTime} {
		if v != nil && *v <= 0 {
			return apperrors.NewValidationError("SLA minutes must be positive", map[string]any{"field": field})
		}
	}
	applyString(&priority.Name, in.Name)
	applyString(&priority.Description, in.Description)
	applyString(&priority.Color, in.Color)
	if in.IsDefault != nil {
		priority.IsDefault = *in.IsDefault
	}
	switch {
	case in.ClearResponse:
		priority.SLAResponseTime = nil
	case in.SLAResponseTime != nil:
		priority.SLAResponseTime = in.SLAResponseTime
	}
	switch {
	case in.ClearResolution:
		priority.SLAResolutionTime = nil
	case in.SLAResolutionTime != nil:
		priority.SLAResolutionTime = in.SLAResolutionTime
	}
	return nil
}

// CreateType adds a ticket type.
func (s *AdminService) CreateType(ctx context.Context, actor *domain.User, in LookupInput) (*domain.TicketType, error) {
	if err := s.admin(actor); err != nil {
		return nil, err
	}
	name, err := requireName(in)
	if err != nil {
		return nil, err
	}
	ticketType := &domain.TicketType{Name: name}
	applyType(ticketType, in)

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Lookups().CreateType(ctx, ticketType); err != nil {
			return err
		}
		if ticketType.IsDefault {
			return tx.Lookups().ClearDefaultType(ctx, ticketType.ID)
		}
		return nil
	})
	if err != nil {
		return nil, s.lookupWriteError("type", err)
	}
	return ticketType, nil
}

// UpdateType edits a ticket type.
func (s *AdminService) UpdateType(ctx context.Context, actor *domain.User, id string, in LookupInput) (*domain.TicketType, error) {
	if err := s.admin(actor); err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	var ticketType *domain.TicketType
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		if ticketType, err = tx.Lookups().GetType(ctx, id); err != nil {
			return err
		}
		applyType(ticketType, in)
		if err := tx.Lookups().UpdateType(ctx, ticketType); err != nil {
			return err
		}
		if ticketType.IsDefault {
			return tx.Lookups().ClearDefaultType(ctx, ticketType.ID)
		}
		return nil
	})
	if err != nil {
		return nil, s.lookupWriteError("type", err)
	}
	return ticketType, nil
}

func applyType(ticketType *domain.TicketType, in LookupInput) {
	applyString(&ticketType.Name, in.Name)
	applyString(&ticketType.Description, in.Description)
	if in.IsDefault != nil {
		ticketType.IsDefault = *in.IsDefault
	}
}

// ListUsers returns every account.
func (s *AdminService) ListUsers(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if err := s.admin(actor); err != nil {
		return nil, err
	}
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, s.storageError("list users", err)
	}
	return users, nil
}

// CreateUser adds an account with a bcrypt password hash.
func (s *AdminService) CreateUser(ctx context.Context, actor *domain.User, in UserInput) (*domain.User, error) {
	if err := s.admin(actor); err != nil {
		return nil, err
	}
	if in.Username == nil || strings.TrimSpace(*in.Username) == "" {
		return nil, apperrors.NewValidationError("username is required", map[string]any{"field": "username"})
	}
	if in.Email == nil {
		return nil, apperrors.NewValidationError("email is required", map[string]any{"field": "email"})
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	user := &domain.User{Role: domain.RoleUser, IsActive: true, CreatedAt: s.now()}
	if err := applyUser(user, in); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash

	if err := s.store.Users().Create(ctx, user); err != nil {
		if apperrors.IsDuplicate(err) {
			return nil, apperrors.NewConflict("username or email already in use", nil)
		}
		return nil, s.storageError("create user", err)
	}
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// UpdateUser edits names, email, role and the active flag.
func (s *AdminService) UpdateUser(ctx context.Context, actor *domain.User, id string, in UserInput) (*domain.User, error) {
	if err := s.admin(actor); err != nil {
		return nil, err
	}
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, s.storageError("load user", err)
	}
	if err := applyUser(user, in); err != nil {
		return nil, err
	}
	if user.ID == actor.ID && (!user.IsActive || user.Role != domain.RoleAdministrator) {
		return nil, apperrors.NewValidationError("administrators cannot demote or deactivate themselves", nil)
	}
	if err := s.store.Users().Update(ctx, user); err != nil {
		if apperrors.IsDuplicate(err) {
			return nil, apperrors.NewConflict("username or email already in use", nil)
		}
		return nil, s.storageError("update user", err)
	}
	return user, nil
}

func applyUser(user *domain.User, in UserInput) error {
	if in.Username != nil {
		if strings.TrimSpace(*in.Username) == "" {
			return apperrors.NewValidationError("username is required", map[string]any{"field": "username"})
		}
		user.Username = strings.TrimSpace(*in.Username)
	}
	if in.Email != nil {
		addr, err := mail.ParseAddress(strings.TrimSpace(*in.Email))
		if err != nil {
			return apperrors.NewValidationError("invalid email", map[string]any{"field": "email"})
		}
		user.Email = strings.ToLower(addr.Address)
	}
	applyString(&user.FirstName, in.FirstName)
	applyString(&user.LastName, in.LastName)
	if in.Role != nil {
		role, ok := domain.ParseRole(*in.Role)
		if !ok {
			return apperrors.NewValidationError("unknown role", map[string]any{"field": "role", "role": *in.Role})
		}
		user.Role = role
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	return nil
}

// ResetPassword sets a new password and forces a change on next login.
func (s *AdminService) ResetPassword(ctx context.Context, actor *domain.User, id, password string) error {
	if err := s.admin(actor); err != nil {
		return err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.store.Users().UpdatePassword(ctx, id, hash, true); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return s.storageError("reset password", err)
	}
	return nil
}

// GetSettings returns the active snapshot, not the tables.
func (s *AdminService) GetSettings(_ context.Context, actor *domain.User) (*SettingsView, error) {
	if err := s.admin(actor); err != nil {
		return nil, err
	}
	snap := s.snapshot()
	view := &SettingsView{}
	if snap == nil {
		return view, nil
	}
	for _, v := range snap.Values {
		view.Settings = append(view.Settings, v)
	}
	for _, n := range snap.Notifications {
		view.Notifications = append(view.Notifications, n)
	}
	sortSettings(view)
	return view, nil
}

// UpdateSettings upserts general settings and reloads.
func (s *AdminService) UpdateSettings(ctx context.Context, actor *domain.User, values map[string]string) (*SettingsView, error) {
	if err := s.admin(actor); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, apperrors.NewValidationError("no settings given", nil)
	}
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		for key, value := range values {
			key = strings.TrimSpace(key)
			if key == "" {
				return apperrors.NewValidationError("setting key is required", nil)
			}
			if err := tx.Settings().Upsert(ctx, domain.Setting{Key: key, Value: value}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.passThrough("update settings", err)
	}
	if err := s.Reload(ctx, actor); err != nil {
		return nil, err
	}
	return s.GetSettings(ctx, actor)
}

// UpdateNotification replaces the notification setting for one event type and reloads.
func (s *AdminService) UpdateNotification(ctx context.Context, actor *domain.User, setting domain.NotificationSetting) (*domain.NotificationSetting, error) {
	if err := s.admin(actor); err != nil {
		return nil, err
	}
	setting.EventType = strings.TrimSpace(setting.EventType)
	if setting.EventType == "" {
		return nil, apperrors.NewValidationError("event type is required", map[string]any{"field": "event_type"})
	}
	setting.Recipients = strings.TrimSpace(setting.Recipients)
	if err := s.store.Settings().UpsertNotification(ctx, setting); err != nil {
		return nil, s.storageError("update notification setting", err)
	}
	if err := s.Reload(ctx, actor); err != nil {
		return nil, err
	}
	return &setting, nil
}

// Reload refreshes the local snapshot and tells other instances to do the same.
func (s *AdminService) Reload(ctx context.Context, actor *domain.User) error {
	if err := s.admin(actor); err != nil {
		return err
	}
	if s.settings == nil {
		return nil
	}
	if err := s.settings.Reload(ctx); err != nil {
		return s.storageError("reload settings", err)
	}
	if err := s.broadcaster.Broadcast(ctx); err != nil {
		s.logger.Warn("settings broadcast failed", zap.Error(err))
	}
	return nil
}

func sortSettings(view *SettingsView) {
	sort.Slice(view.Settings, func(i, j int) bool { return view.Settings[i].Key < view.Settings[j].Key })
	sort.Slice(view.Notifications, func(i, j int) bool {
		return view.Notifications[i].EventType < view.Notifications[j].EventType
	})
}
