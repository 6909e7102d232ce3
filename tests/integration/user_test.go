//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
)

var userSeq atomic.Int64

// registerUnique creates a fresh customer account with a unique email.
func registerUnique(t *testing.T, prefix string) userResponse {
	t.Helper()

	email := fmt.Sprintf("%s-%d@example.com", prefix, userSeq.Add(1))
	resp := doPost(t, "/api/users/register", map[string]string{
		"name":     prefix,
		"email":    email,
		"password": "s3cret-pass",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d", email, resp.StatusCode)
	}

	env := decodeJSON[userEnvelope](t, resp)
	if !env.Success {
		t.Fatalf("register %s: success=false, error=%q", email, env.Error)
	}
	return env.User
}

func TestRegisterAndLogin(t *testing.T) {
	u := registerUnique(t, "ana")
	if u.ID == 0 {
		t.Fatal("registered user has no id")
	}
	if u.IsAdmin {
		t.Error("self-registered user must not be admin")
	}

	got := loginAs(t, u.Email, "s3cret-pass")
	if got.ID != u.ID {
		t.Errorf("login id: got %d, want %d", got.ID, u.ID)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	u := registerUnique(t, "dup")

	resp := doPost(t, "/api/users/register", map[string]string{
		"name":     "Duplicate",
		"email":    u.Email,
		"password": "another-pass",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	env := decodeJSON[userEnvelope](t, resp)
	if env.Success || env.Error == "" {
		t.Errorf("expected error envelope, got %+v", env)
	}
}

func TestRegister_Validation(t *testing.T) {
	cases := []struct {
		name string
		body map[string]string
	}{
		{"missing fields", map[string]string{"email": "x@example.com"}},
		{"bad email", map[string]string{"name": "X", "email": "not-an-email", "password": "s3cret-pass"}},
		{"short password", map[string]string{"name": "X", "email": "short@example.com", "password": "ab"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doPost(t, "/api/users/register", tc.body)
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	u := registerUnique(t, "wrongpw")

	resp := doPost(t, "/api/users/login", map[string]string{
		"email":    u.Email,
		"password": "not-the-password",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	resp := doPost(t, "/api/users/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever-pass",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestSeededAdmin_CanLogin(t *testing.T) {
	admin := loginAs(t, adminEmail, adminPassword)
	if !admin.IsAdmin {
		t.Error("seeded admin account is not flagged admin")
	}
}
