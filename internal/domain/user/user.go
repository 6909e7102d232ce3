package user

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Sentinel errors for account operations.
var (
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned on registration with an already-used email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials deliberately does not distinguish an unknown
	// email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User represents a registered account. PasswordHash is never serialized.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository defines persistence operations for user accounts.
type Repository interface {
	Create(ctx context.Context, u *User) (int64, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	// GetByEmail looks up by normalized (lower-cased) email.
	GetByEmail(ctx context.Context, email string) (*User, error)
}
