package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type userKey struct{}

// UserResolver resolves an authenticated user ID from a bearer token.
type UserResolver interface {
	ResolveUser(ctx context.Context, token string) (string, error)
}

// UserFromContext returns the user ID from context, if present.
func UserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userKey{}).(string)
	return userID, ok
}

// AuthMiddleware enforces bearer token authentication. Requests without
// a resolvable identity are rejected before any quota work happens.
func AuthMiddleware(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized", "")
				return
			}

			userID, err := resolver.ResolveUser(r.Context(), token)
			if err != nil || userID == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized", "")
				return
			}

			ctx := context.WithValue(r.Context(), userKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
