package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/smartdept/budget/internal/auth"
	"github.com/smartdept/budget/internal/user"
)

type ctxKey int

const identityKey ctxKey = 0

// Authenticator validates the bearer token and attaches the caller's
// identity to the request context. Requests without a valid token get a
// uniform 401 so probing cannot tell a missing token from a bad one.
func Authenticator(tokens *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Validate(tokenStr)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			id, err := uuid.Parse(claims.Subject)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			role := user.Role(claims.Role)
			if !role.Valid() {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			identity := user.Identity{
				ID:   id,
				Name: claims.Name,
				Role: role,
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom returns the authenticated identity stored by Authenticator.
// The zero Identity is returned on unauthenticated requests.
func IdentityFrom(ctx context.Context) user.Identity {
	identity, _ := ctx.Value(identityKey).(user.Identity)
	return identity
}

// RequireRole rejects requests whose role fails the predicate. It must run
// after Authenticator.
func RequireRole(allowed func(user.Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowed(IdentityFrom(r.Context()).Role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
