package dto

// LookupRequest is shared by status, priority and type writes.
type LookupRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Color       *string `json:"color" validate:"omitempty,max=20"`
	IsDefault   *bool   `json:"is_default"`
}

// StatusRequest payload.
type StatusRequest struct {
	LookupRequest
	IsClosed *bool `json:"is_closed"`
}

// PriorityRequest payload. SLA targets are minutes.
type PriorityRequest struct {
	LookupRequest
	SLAResponseTime   *int `json:"sla_response_time" validate:"omitempty,gt=0"`
	SLAResolutionTime *int `json:"sla_resolution_time" validate:"omitempty,gt=0"`
	ClearResponse     bool `json:"clear_sla_response_time"`
	ClearResolution   bool `json:"clear_sla_resolution_time"`
}

// UserRequest payload for admin user writes.
type UserRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=2,max=150"`
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Password  string  `json:"password"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"is_active"`
}

// ResetPasswordRequest payload.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// SettingsRequest upserts general settings by key.
type SettingsRequest struct {
	Values map[string]string `json:"values" validate:"required,min=1"`
}

// NotificationRequest payload.
type NotificationRequest struct {
	IsEnabled  bool   `json:"is_enabled"`
	Recipients string `json:"recipients" validate:"max=1000"`
}

// SettingResponse is one general setting.
type SettingResponse struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// NotificationResponse is one notification setting.
type NotificationResponse struct {
	EventType  string `json:"event_type"`
	IsEnabled  bool   `json:"is_enabled"`
	Recipients string `json:"recipients"`
}

// SettingsResponse is the active snapshot.
type SettingsResponse struct {
	Settings      []SettingResponse      `json:"settings"`
	Notifications []NotificationResponse `json:"notifications"`
}

// PriorityResponse represents a priority.
type PriorityResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	Color             string `json:"color"`
	IsDefault         bool   `json:"is_default"`
	SLAResponseTime   *int   `json:"sla_response_time"`
	SLAResolutionTime *int   `json:"sla_resolution_time"`
}

// StatusDetailResponse represents a status row.
type StatusDetailResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	IsDefault   bool   `json:"is_default"`
	IsClosed    bool   `json:"is_closed"`
	IsTerminal  bool   `json:"is_terminal"`
}

// TypeResponse represents a ticket type.
type TypeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsDefault   bool   `json:"is_default"`
}

// LookupsResponse bundles every lookup list.
type LookupsResponse struct {
	Statuses   []StatusDetailResponse `json:"statuses"`
	Priorities []PriorityResponse     `json:"priorities"`
	Types      []TypeResponse         `json:"types"`
}
