package domain

import (
	"errors"
	"time"
)

const (
	TypeEmployee = "Employee"
	TypeAdmin    = "Admin"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrMissingSession = errors.New("missing session")

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Type         string    `json:"type"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session is the identity carried by the signed "user" cookie.
type Session struct {
	Type  string `json:"type"`
	Email string `json:"email"`
}

// IsAdmin reports whether the session belongs to an administrator.
func (s Session) IsAdmin() bool { return s.Type == TypeAdmin }

// ValidUserType reports whether t is a known account type.
func ValidUserType(t string) bool {
	return t == TypeEmployee || t == TypeAdmin
}
