package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-faster/errors"

	"tienda/internal/domain/user"
)

// identityHeader carries the caller's opaque identity token.
const identityHeader = "X-User-ID"

// identityKey is the context key for the resolved caller.
type identityKey struct{}

// callerFrom extracts the authenticated user from the request context.
func callerFrom(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(identityKey{}).(*user.User)
	return u, ok
}

// requireIdentity resolves the X-User-ID header to a user record and stores
// it in the request context. Missing or unresolvable tokens get 401.
func (h *Handler) requireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(identityHeader)
		if token == "" {
			envelopeError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}

		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			envelopeError(w, r, http.StatusUnauthorized, "invalid session")
			return
		}

		u, err := h.users.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				envelopeError(w, r, http.StatusUnauthorized, "invalid session")
				return
			}
			internalError(w, r, err, true)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin rejects callers without the admin flag. Must run after
// requireIdentity.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := callerFrom(r.Context())
		if !ok {
			envelopeError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		if !u.IsAdmin {
			envelopeError(w, r, http.StatusForbidden, "admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
