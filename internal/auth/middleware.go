package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/parisxmas/OxiDB/qrform/internal/models"
)

type contextKey string

const UserContextKey contextKey = "user"

// Middleware rejects requests without a valid admin bearer token.
// A missing token is 401; an invalid, expired or non-admin token is 403.
func Middleware(tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := tokens.Validate(bearerToken(r))
			switch {
			case errors.Is(err, ErrTokenMissing):
				writeAuthError(w, http.StatusUnauthorized, "Access denied. No token provided.")
				return
			case err != nil:
				log.Printf("auth: %s %s rejected: %v", r.Method, r.URL.Path, err)
				writeAuthError(w, http.StatusForbidden, "Invalid or expired token.")
				return
			case claims.Role != models.RoleAdmin:
				log.Printf("auth: %s %s rejected: role %q", r.Method, r.URL.Path, claims.Role)
				writeAuthError(w, http.StatusForbidden, "Insufficient permissions.")
				return
			}
			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) *Claims {
	claims, _ := ctx.Value(UserContextKey).(*Claims)
	return claims
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
