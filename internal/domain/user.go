package domain

import (
	"strings"
	"time"
)

// Role enumerates access levels.
type Role string

const (
	RoleAdministrator Role = "Administrator"
	RoleAgent         Role = "Agent"
	RoleUser          Role = "User"
)

// ParseRole maps a role name to a Role. Technician is accepted as an alias for Agent.
func ParseRole(name string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "administrator", "admin":
		return RoleAdministrator, true
	case "agent", "technician":
		return RoleAgent, true
	case "user":
		return RoleUser, true
	}
	return "", false
}

// IsStaff reports whether the role may post internal comments and count as a first response.
func (r Role) IsStaff() bool {
	return r == RoleAdministrator || r == RoleAgent
}

// User is an account of any role.
type User struct {
	ID                  string
	Username            string
	Email               string
	FirstName           string
	LastName            string
	PasswordHash        string
	Role                Role
	IsActive            bool
	ForcePasswordChange bool
	CreatedAt           time.Time
	LastLogin           *time.Time
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
