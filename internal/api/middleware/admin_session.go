package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sbms-academy/server/internal/api/problem"
	"github.com/sbms-academy/server/internal/auth"
)

// AdminSessionCookie holds the signed session issued by the admin password gate.
const AdminSessionCookie = "sbms_admin_session"

const adminClaimsKey contextKey = "admin_claims"

var errNoAdminSession = errors.New("admin session missing or expired")

// SessionValidator checks an admin session token.
type SessionValidator interface {
	Validate(token string) (*auth.SessionClaims, error)
}

// AdminSession admits requests carrying a valid admin session cookie and
// answers everything else with 401.
func AdminSession(sessions SessionValidator, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AdminSessionCookie)
			if err != nil || strings.TrimSpace(cookie.Value) == "" || sessions == nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Admin session required", errNoAdminSession, env)
				return
			}

			claims, err := sessions.Validate(cookie.Value)
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Admin session required", err, env)
				return
			}

			ctx := context.WithValue(r.Context(), adminClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func AdminClaims(r *http.Request) *auth.SessionClaims {
	if r == nil {
		return nil
	}
	if claims, ok := r.Context().Value(adminClaimsKey).(*auth.SessionClaims); ok {
		return claims
	}
	return nil
}
