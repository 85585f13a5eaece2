package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gymsaathiide/gymaccess/internal/response"
	"github.com/gymsaathiide/gymaccess/internal/service"
	"github.com/gymsaathiide/gymaccess/pkg/auth"
)

type contextKey string

const claimsKey contextKey = "claims"

type Handlers struct {
	attendance service.AttendanceService
	qrConfig   service.QRConfigService
	jwtSecret  string
}

func New(attendance service.AttendanceService, qrConfig service.QRConfigService, jwtSecret string) *Handlers {
	return &Handlers{
		attendance: attendance,
		qrConfig:   qrConfig,
		jwtSecret:  jwtSecret,
	}
}

// RequireAuth parses the bearer token and enforces a role. Admin tokens
// pass member checks so staff can exercise member endpoints.
func (h *Handlers) RequireAuth(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.Unauthorized(w, "Missing or invalid authorization header")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, h.jwtSecret)
			if err != nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			if requiredRole != "" && claims.Role != requiredRole && claims.Role != "admin" {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// CallerIdentity returns the authenticated subject, for rate-limit keying.
func (h *Handlers) CallerIdentity(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	claims, err := auth.Parse(strings.TrimPrefix(authHeader, "Bearer "), h.jwtSecret)
	if err != nil {
		return ""
	}
	return claims.Sub
}
