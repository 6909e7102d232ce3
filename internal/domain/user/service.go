package user

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"golang.org/x/crypto/bcrypt"
)

// Service encapsulates registration and authentication logic.
type Service struct {
	users Repository
}

// NewService creates a user Service backed by the given repository.
func NewService(users Repository) *Service {
	return &Service{users: users}
}

// NormalizeEmail canonicalizes an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterRequest holds the input for creating a new account.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// Register hashes the password and persists a new user. It fails with
// ErrEmailTaken when the normalized email is already registered. The returned
// user carries no password hash.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	email := NormalizeEmail(req.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	u := &User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hash),
	}
	id, err := s.users.Create(ctx, u)
	if err != nil {
		// The unique index is the real guard; the pre-check above only
		// narrows the race window.
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, errors.Wrap(err, "create user")
	}

	u.ID = id
	u.PasswordHash = ""
	return u, nil
}

// Authenticate verifies an email/password pair. Unknown email and wrong
// password both produce ErrInvalidCredentials. The returned user carries no
// password hash.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "get user")
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	u.PasswordHash = ""
	return u, nil
}

// GetByID resolves a user by its identifier. Used by the identity middleware.
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.users.GetByID(ctx, id)
}
