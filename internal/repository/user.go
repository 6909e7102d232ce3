package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tienda/internal/domain/user"
)

const (
	createUserSQL = `INSERT INTO users (name, email, password_hash, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	getUserByIDSQL = `SELECT id, name, email, password_hash, is_admin, created_at
		FROM users WHERE id = $1`

	getUserByEmailSQL = `SELECT id, name, email, password_hash, is_admin, created_at
		FROM users WHERE email = $1`
)

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user and returns its generated ID. A unique-index
// violation on email is reported as user.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, u *user.User) (int64, error) {
	err := r.pool.QueryRow(ctx, createUserSQL,
		u.Name, u.Email, u.PasswordHash, u.IsAdmin,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return 0, user.ErrEmailTaken
		}
		return 0, fmt.Errorf("creating user: %w", err)
	}
	return u.ID, nil
}

// GetByID returns a single user by its identifier.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u, err := r.scanOne(ctx, getUserByIDSQL, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %d: %w", id, err)
	}
	return u, nil
}

// GetByEmail returns a single user by normalized email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	u, err := r.scanOne(ctx, getUserByEmailSQL, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) scanOne(ctx context.Context, sql string, arg any) (*user.User, error) {
	var u user.User
	err := r.pool.QueryRow(ctx, sql, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
