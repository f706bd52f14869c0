package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"idmonitor/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	UserID string
}

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(ctx context.Context) string {
	return requestcontext.UserID(ctx)
}

// WithUserID injects an authenticated user ID into a context.
// Useful for handler tests that bypass the middleware chain.
func WithUserID(ctx context.Context, userID string) context.Context {
	return requestcontext.WithUserID(ctx, userID)
}

func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			if token, ok := strings.CutPrefix(authHeader, bearerPrefix); ok {
				claims, err := validator.ValidateToken(token)
				if err != nil {
					ctx := r.Context()
					logger.WarnContext(ctx, "unauthorized access - invalid token",
						"error", err,
						"request_id", GetRequestID(ctx),
					)
					writeUnauthorized(w, "Invalid or expired token")
					return
				}

				ctx := requestcontext.WithUserID(r.Context(), claims.UserID)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			// No Authorization header or invalid format
			ctx := r.Context()
			logger.WarnContext(ctx, "unauthorized access - missing token",
				"request_id", GetRequestID(ctx),
			)
			writeUnauthorized(w, "Missing or invalid Authorization header")
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
