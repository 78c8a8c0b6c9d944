package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sbms-academy/server/internal/auth"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	identity auth.Identity
	err      error
}

func (s stubAuthenticator) Authenticate(r *http.Request) (auth.Identity, error) {
	return s.identity, s.err
}

type stubRoles struct {
	role auth.Role
	err  error
}

func (s stubRoles) ResolveRole(ctx context.Context, identity auth.Identity) (auth.Role, error) {
	return s.role, s.err
}

func TestRequireIdentity(t *testing.T) {
	var seen auth.Identity
	var seenRole auth.Role
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFrom(r.Context())
		seenRole, _ = RoleFrom(r.Context())
	})

	identity := auth.Identity{ID: "user-1", Email: "sana@example.com"}
	handler := RequireIdentity(stubAuthenticator{identity: identity}, stubRoles{role: auth.Role{IsEmployee: true, EmployeeID: "emp-1"}}, "test")(inner)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/registrations", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, identity, seen)
	require.True(t, seenRole.IsEmployee)

	handler = RequireIdentity(stubAuthenticator{err: auth.ErrUnauthorized}, stubRoles{}, "test")(inner)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/registrations", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	handler = RequireIdentity(stubAuthenticator{identity: identity}, stubRoles{err: errors.New("db down")}, "test")(inner)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/registrations", nil))
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRequireEmployee(t *testing.T) {
	handler := RequireEmployee("test")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = req.WithContext(WithIdentity(req.Context(), auth.Identity{ID: "u"}, auth.Role{}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req = req.WithContext(WithIdentity(req.Context(), auth.Identity{ID: "u"}, auth.Role{IsEmployee: true}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminSession(t *testing.T) {
	manager := auth.NewSessionManager("admin-session-secret", time.Hour, "sbms")
	token, err := manager.Issue()
	require.NoError(t, err)

	var claims *auth.SessionClaims
	handler := AdminSession(manager, "test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims = AdminClaims(r)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/session", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/session", nil)
	req.AddCookie(&http.Cookie{Name: AdminSessionCookie, Value: "garbage"})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/session", nil)
	req.AddCookie(&http.Cookie{Name: AdminSessionCookie, Value: token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, claims)
	require.Equal(t, "admin", claims.Scope)
}
