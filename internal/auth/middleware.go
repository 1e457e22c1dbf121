package auth

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"college-erp/internal/httputil"
)

type contextKey string

const (
	// UserIDKey is the context key for the authenticated user's ID
	UserIDKey contextKey = "user_id"
	// UsernameKey is the context key for the authenticated username
	UsernameKey contextKey = "username"
	// RoleNameKey is the context key for the authenticated user's role
	RoleNameKey contextKey = "role_name"
	// AccessTypeKey is the context key for the role's access type
	AccessTypeKey contextKey = "access_type"
)

// Middleware validates the JWT from the auth cookie and adds claims to
// the request context.
func Middleware(jwtSecret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("token")
			if err != nil {
				logger.Warn("no auth cookie found", "path", r.URL.Path)
				httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			claims, err := ValidateAccessToken(jwtSecret, cookie.Value)
			if err != nil {
				logger.Warn("invalid token", "error", err)
				httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UsernameKey, claims.Username)
			ctx = context.WithValue(ctx, RoleNameKey, claims.RoleName)
			ctx = context.WithValue(ctx, AccessTypeKey, claims.AccessType)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the authenticated user's ID from context
func GetUserID(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(UserIDKey).(int)
	return userID, ok
}

// GetUsername extracts the authenticated username from context
func GetUsername(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

// GetRoleName extracts the authenticated user's role from context
func GetRoleName(ctx context.Context) (string, bool) {
	roleName, ok := ctx.Value(RoleNameKey).(string)
	return roleName, ok
}

// GetAccessType extracts the role's access type from context
func GetAccessType(ctx context.Context) (string, bool) {
	accessType, ok := ctx.Value(AccessTypeKey).(string)
	return accessType, ok
}

// SetAuthCookie sets the JWT in a secure HttpOnly cookie
func SetAuthCookie(w http.ResponseWriter, token string, maxAge int) {
	sameSite := http.SameSiteStrictMode
	env := os.Getenv("ENV")
	if env == "development" || env == "local" {
		sameSite = http.SameSiteLaxMode // Allow testing from Postman
	}

	// Secure cookies require HTTPS - enable for production environments
	secure := env == "production" || env == "prod" || env == "gcp-gke"

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		HttpOnly: true,     // XSS protection
		Secure:   secure,   // HTTPS only in production
		SameSite: sameSite, // CSRF protection
		Path:     "/",
		MaxAge:   maxAge,
	})
}

// ClearAuthCookie removes the auth cookie
func ClearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		HttpOnly: true,
		Secure:   os.Getenv("ENV") != "local",
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1, // Delete cookie
	})
}
