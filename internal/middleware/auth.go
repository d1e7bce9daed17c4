package middleware

import (
	"context"
	"net/http"
	"strconv"

	"voxa/internal/models"
	"voxa/internal/utils"
)

const (
	userIDKey   contextKey = "user_id"
	usernameKey contextKey = "username"
)

// RequireAuth validates the Bearer token and stores the caller's
// identity in the request context. API routes that must know who the
// user is sit behind this.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := utils.VerifyToken(r, secret)
			if err != nil {
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    "unauthorized",
					Message: "Valid authentication is required",
				})
				return
			}

			sub, err := utils.GetUserIDFromClaims(claims)
			if err != nil {
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    "unauthorized",
					Message: "Valid authentication is required",
				})
				return
			}
			id, err := strconv.ParseUint(sub, 10, 64)
			if err != nil {
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    "unauthorized",
					Message: "Valid authentication is required",
				})
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, uint(id))
			if username, ok := claims["username"].(string); ok {
				ctx = context.WithValue(ctx, usernameKey, username)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the caller's identity when a valid token is
// present and lets anonymous requests through untouched. Interview
// routes accept both signed-in and trial users.
func OptionalAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := utils.VerifyToken(r, secret)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			if sub, err := utils.GetUserIDFromClaims(claims); err == nil {
				if id, err := strconv.ParseUint(sub, 10, 64); err == nil {
					ctx = context.WithValue(ctx, userIDKey, uint(id))
				}
			}
			if username, ok := claims["username"].(string); ok {
				ctx = context.WithValue(ctx, usernameKey, username)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user's id, or nil for
// anonymous requests.
func UserIDFromContext(ctx context.Context) *uint {
	if id, ok := ctx.Value(userIDKey).(uint); ok {
		return &id
	}
	return nil
}

// UsernameFromContext returns the authenticated username, or empty.
func UsernameFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(usernameKey).(string); ok {
		return name
	}
	return ""
}
