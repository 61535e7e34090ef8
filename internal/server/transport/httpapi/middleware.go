package httpapi

import (
	"context"
	"net/http"
	"strings"

	"siams/internal/server/auth"
	"siams/internal/server/models"
	"siams/internal/shared"
)

type contextKey string

const claimsContextKey contextKey = "session-claims"

// ClaimsFromContext returns the session claims attached by Authenticate.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, error) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	if !ok || claims == nil {
		return nil, shared.ErrorInvalidToken
	}
	return claims, nil
}

// Authenticate validates the Bearer token and attaches its claims to the
// request context. The claims identify the caller; the services re-check the
// role against the store on every admin operation.
func Authenticate(secretKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
				return
			}

			claims, err := auth.ParseToken(token, secretKey)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid token"})
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers whose token does not carry the Admin role.
// This is a cheap gate on stale claims; the authoritative check happens in
// the service against the current user record.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := ClaimsFromContext(r.Context())
		if err != nil || claims.Role != models.RoleAdmin {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin role required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
