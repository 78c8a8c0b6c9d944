package middleware

import (
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/sbms-academy/server/internal/api/problem"
)

// CSRFHeader is where the dashboard echoes the token from /api/admin/session.
const CSRFHeader = "X-CSRF-Token"

// CSRFProtection guards the cookie-authenticated admin routes with
// gorilla/csrf's double-submit check. Bearer-token routes do not need it.
func CSRFProtection(authKey []byte, secure bool, env string) func(http.Handler) http.Handler {
	protect := csrf.Protect(authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.RequestHeader(CSRFHeader),
		csrf.ErrorHandler(csrfErrorHandler(env)),
	)
	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Without TLS the Referer check would reject every request.
			if !secure && r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func csrfErrorHandler(env string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "CSRF token validation failed", csrf.FailureReason(r), env)
	})
}

// CSRFToken returns the masked token for the current request.
func CSRFToken(r *http.Request) string {
	return csrf.Token(r)
}
