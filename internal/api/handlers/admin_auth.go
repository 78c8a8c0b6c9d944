package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sbms-academy/server/internal/api/middleware"
	"github.com/sbms-academy/server/internal/auth"
)

// PasswordChecker verifies the shared admin password.
type PasswordChecker interface {
	Check(password string) error
}

type SessionIssuer interface {
	Issue() (string, error)
	Expiry() time.Duration
}

// AdminAuthHandler serves the admin password gate. It answers with the
// small {success, error} envelope the dashboard login form expects rather
// than problem documents.
type AdminAuthHandler struct {
	Secret   PasswordChecker
	Sessions SessionIssuer
	Secure   bool
	Env      string
}

func NewAdminAuthHandler(secret PasswordChecker, sessions SessionIssuer, secure bool, env string) *AdminAuthHandler {
	return &AdminAuthHandler{Secret: secret, Sessions: sessions, Secure: secure, Env: env}
}

type adminLoginRequest struct {
	Password string `json:"password"`
}

type adminAuthResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Login handles POST /api/admin/auth (and its /admin/auth alias).
func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req adminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, adminAuthResponse{Error: "Invalid request"})
		return
	}

	if err := h.Secret.Check(req.Password); err != nil {
		if errors.Is(err, auth.ErrSecretNotConfigured) {
			logger.Error().Msg("admin password is not configured")
			writeJSON(w, http.StatusInternalServerError, adminAuthResponse{Error: "Admin password not configured"})
			return
		}
		logger.Warn().Msg("admin login rejected")
		writeJSON(w, http.StatusUnauthorized, adminAuthResponse{Error: "Invalid password"})
		return
	}

	if h.Sessions != nil {
		token, err := h.Sessions.Issue()
		if err != nil {
			logger.Error().Err(err).Msg("issue admin session")
			writeJSON(w, http.StatusInternalServerError, adminAuthResponse{Error: "Internal server error"})
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.AdminSessionCookie,
			Value:    token,
			Path:     "/",
			Expires:  time.Now().Add(h.Sessions.Expiry()),
			HttpOnly: true,
			Secure:   h.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	writeJSON(w, http.StatusOK, adminAuthResponse{Success: true})
}

type adminSessionResponse struct {
	Authenticated bool      `json:"authenticated"`
	CSRFToken     string    `json:"csrf_token"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Session handles GET /api/admin/session. It runs behind AdminSession and
// CSRF protection, so the masked token for state-changing calls is available.
func (h *AdminAuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	resp := adminSessionResponse{Authenticated: true, CSRFToken: middleware.CSRFToken(r)}
	if claims := middleware.AdminClaims(r); claims != nil && claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout handles POST /api/admin/logout by expiring the session cookie.
func (h *AdminAuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, adminAuthResponse{Success: true})
}
