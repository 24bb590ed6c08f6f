package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator defines the interface for validating admin access tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims represents the claims we expect from the token validator.
type TokenClaims struct {
	Username string
	Role     string
}

type contextKeyAdminUser struct{}

// ContextKeyAdminUser is exported for use in handlers and tests.
var ContextKeyAdminUser = contextKeyAdminUser{}

// GetAdminUser retrieves the authenticated admin username from the context.
func GetAdminUser(ctx context.Context) string {
	user, ok := ctx.Value(ContextKeyAdminUser).(string)
	if !ok {
		return ""
	}
	return user
}

// RequireAdmin guards dashboard endpoints. Requests without a valid bearer
// token are rejected with 401 before reaching the handler.
func RequireAdmin(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				logger.WarnContext(r.Context(), "missing bearer token",
					"request_id", GetRequestID(r.Context()),
					"path", r.URL.Path,
				)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			claims, err := validator.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				logger.WarnContext(r.Context(), "token rejected",
					"request_id", GetRequestID(r.Context()),
					"path", r.URL.Path,
					"error", err.Error(),
				)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeyAdminUser, claims.Username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
