package model

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the access level of an account.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the principal has the Admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// User represents a registered account.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Address      *string   `json:"address,omitempty" db:"address"`
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// RegisterRequest represents the payload for creating an account.
type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Address  *string `json:"address,omitempty"`
	Role     Role    `json:"role,omitempty"`
}

// Validate checks the request, defaulting Role to User.
func (r *RegisterRequest) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(r.Name) == "" {
		fields["name"] = "Name is required"
	}
	if !validEmail(r.Email) {
		fields["email"] = "Invalid email address"
	}
	if len(r.Password) < 6 {
		fields["password"] = "Password must be at least 6 characters long"
	}
	if r.Role == "" {
		r.Role = RoleUser
	} else if !r.Role.Valid() {
		fields["role"] = "Role must be User or Admin"
	}
	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

// LoginRequest represents the payload for authenticating.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the request.
func (r *LoginRequest) Validate() error {
	fields := map[string]string{}
	if !validEmail(r.Email) {
		fields["email"] = "Invalid email address"
	}
	if r.Password == "" {
		fields["password"] = "Password is required"
	}
	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

// UserSummary is the public projection of a user.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
