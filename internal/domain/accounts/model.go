// Package accounts manages individual staff credentials. Every login is a
// named account with its own bcrypt hash and role; there is no shared
// clinic password.
package accounts

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateUser  = errors.New("username already taken")
	ErrBadCredentials = errors.New("invalid username or password")
)

// User is a staff account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	DisplayName  string    `json:"display_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
