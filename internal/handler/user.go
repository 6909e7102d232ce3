package handler

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-faster/errors"

	"tienda/internal/domain/user"
)

const minPasswordLen = 6

// register handles POST /api/users/register.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		envelopeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	switch {
	case req.Name == "" || req.Email == "" || req.Password == "":
		envelopeError(w, r, http.StatusBadRequest, "name, email and password are required")
		return
	case !validEmail(req.Email):
		envelopeError(w, r, http.StatusBadRequest, "email is not valid")
		return
	case len(req.Password) < minPasswordLen:
		envelopeError(w, r, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	u, err := h.users.Register(r.Context(), user.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			envelopeError(w, r, http.StatusBadRequest, "email already registered")
			return
		}
		internalError(w, r, err, true)
		return
	}

	writeJSON(w, r, http.StatusCreated, map[string]any{
		"success": true,
		"message": "user registered",
		"user":    u,
	})
}

// login handles POST /api/users/login.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		envelopeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		envelopeError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			envelopeError(w, r, http.StatusUnauthorized, "invalid email or password")
			return
		}
		internalError(w, r, err, true)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"message": "login successful",
		"user":    u,
	})
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
