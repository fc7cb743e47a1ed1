package domain

import (
	"errors"
	"time"
)

const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// Roles is the fixed set of role names seeded at startup.
var Roles = []string{RoleUser, RoleAdmin}

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrAdminExists = errors.New("admin user already exists")
var ErrSetupKeyInvalid = errors.New("invalid admin setup key")
var ErrPasswordMismatch = errors.New("passwords do not match")
var ErrUnknownRole = errors.New("unknown role")

// User models an account in the system.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Roles        []string  `json:"roles"`
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// ValidRole reports whether name is one of the fixed role names.
func ValidRole(name string) bool {
	for _, r := range Roles {
		if r == name {
			return true
		}
	}
	return false
}
