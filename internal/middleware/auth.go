// Package middleware gates the kitchen endpoints behind an admin session.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/currymessina/api/internal/auth"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type contextKey string

const claimsKey contextKey = "claims"

// Admin is the authenticated session attached to a request.
type Admin struct {
	ID       uuid.UUID
	Username string
	Role     string
}

// Authenticate validates the bearer access token and stores its claims on
// the request context. Refresh tokens are rejected here.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				deny(w, r, http.StatusUnauthorized, "missing or malformed authorization header", "")
				return
			}

			claims, err := auth.ValidateToken(jwtSecret, token)
			if err != nil {
				deny(w, r, http.StatusUnauthorized, "invalid token", "")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets the request through when the session holds one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, ok := AdminFromContext(r.Context())
			if !ok {
				deny(w, r, http.StatusUnauthorized, "not authenticated", "")
				return
			}

			for _, role := range roles {
				if admin.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			deny(w, r, http.StatusForbidden, "insufficient permissions", admin.Username)
		})
	}
}

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// AdminFromContext returns the session set by Authenticate.
func AdminFromContext(ctx context.Context) (Admin, bool) {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return Admin{}, false
	}
	return Admin{ID: claims.AdminID, Username: claims.Username, Role: claims.Role}, true
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// deny logs the rejection and writes the handler package's error envelope.
func deny(w http.ResponseWriter, r *http.Request, status int, msg, username string) {
	slog.Warn("admin request denied",
		"status", status,
		"reason", msg,
		"path", r.URL.Path,
		"username", username,
		"request_id", chimw.GetReqID(r.Context()),
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
}
