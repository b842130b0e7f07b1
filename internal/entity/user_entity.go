package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser       UserRole = "user"
	UserRoleAdmin      UserRole = "admin"
	UserRoleSuperAdmin UserRole = "superadmin"
)

// AccountLabel is a display label only; roles carry no extra rights in
// the chat core.
func (r UserRole) AccountLabel() string {
	switch r {
	case UserRoleAdmin:
		return "Admin"
	case UserRoleSuperAdmin:
		return "Super Admin"
	default:
		return "Premium"
	}
}

type User struct {
	Id           uuid.UUID
	Email        string
	PasswordHash *string
	FullName     string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
