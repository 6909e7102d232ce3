package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- Mock implementations ---

type mockUserRepo struct {
	byEmail map[string]*User
	byID    map[int64]*User
	nextID  int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byEmail: make(map[string]*User),
		byID:    make(map[int64]*User),
	}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) (int64, error) {
	if _, ok := m.byEmail[u.Email]; ok {
		return 0, ErrEmailTaken
	}
	m.nextID++
	cp := *u
	cp.ID = m.nextID
	m.byEmail[cp.Email] = &cp
	m.byID[cp.ID] = &cp
	return cp.ID, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// --- Tests ---

func TestRegister(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewService(repo)

	u, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Ana",
		Email:    "  Ana@Example.COM ",
		Password: "s3cret",
	})

	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Empty(t, u.PasswordHash, "hash must not leave the service")

	// A real bcrypt hash was stored.
	stored := repo.byEmail["ana@example.com"]
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")))
}

func TestRegister_EmailTaken(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "x"})
	require.NoError(t, err)

	// Same email with different casing is still taken.
	_, err = svc.Register(context.Background(), RegisterRequest{Name: "Ana2", Email: "ANA@example.com", Password: "y"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "s3cret"})
	require.NoError(t, err)

	u, err := svc.Authenticate(context.Background(), "Ana@Example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)
	assert.Empty(t, u.PasswordHash)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "s3cret"})
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "ana@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	svc := NewService(newMockUserRepo())

	// Identical error for unknown email and wrong password.
	_, err := svc.Authenticate(context.Background(), "nobody@example.com", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
