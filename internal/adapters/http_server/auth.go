package httpserver

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"hotelbook/internal/adapters/auth"
	"hotelbook/internal/domain"
)

type ctxKey int

const userKey ctxKey = iota

// Authenticator resolves the bearer token to a stored user.
type Authenticator struct {
	tokens *auth.Tokens
	users  domain.UserRepository
}

func NewAuthenticator(t *auth.Tokens, users domain.UserRepository) *Authenticator {
	return &Authenticator{tokens: t, users: users}
}

func bearer(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie("token"); err == nil {
		return c.Value
	}
	return ""
}

// Protect rejects requests without a valid token for an existing user.
func (a *Authenticator) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.tokens.Parse(bearer(r))
		if err != nil {
			writeError(w, r, domain.Unauthorizedf("Not authorized to access this route"))
			return
		}
		u, err := a.users.GetUser(r.Context(), id)
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, r, domain.Unauthorizedf("Not authorized to access this route"))
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

// Authorize admits only the given roles. It must run after Protect.
func Authorize(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := currentUser(r.Context())
			if !ok {
				writeError(w, r, domain.Unauthorizedf("Not authorized to access this route"))
				return
			}
			if !slices.Contains(roles, u.Role) {
				writeError(w, r, domain.Forbiddenf("User role %s is not authorized to access this route", u.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func currentUser(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userKey).(domain.User)
	return u, ok
}

func actor(r *http.Request) domain.Actor {
	u, _ := currentUser(r.Context())
	return u.Actor()
}
