package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbms-academy/server/internal/api/problem"
	"github.com/sbms-academy/server/internal/auth"
)

const (
	identityKey contextKey = "identity"
	roleKey     contextKey = "role"
)

// Authenticator verifies the identity token on a request.
type Authenticator interface {
	Authenticate(r *http.Request) (auth.Identity, error)
}

// RoleResolver looks up whether an identity belongs to staff.
type RoleResolver interface {
	ResolveRole(ctx context.Context, identity auth.Identity) (auth.Role, error)
}

// RequireIdentity rejects requests without a valid identity token (401) and
// stores the identity and its resolved role in the context. A failed role
// lookup is an upstream failure (502), not an anonymous downgrade.
func RequireIdentity(authn Authenticator, roles RoleResolver, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := authn.Authenticate(r)
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", err, env,
					problem.WithDetail("Sign in to continue"))
				return
			}

			role, err := roles.ResolveRole(r.Context(), identity)
			if err != nil {
				problem.Write(w, r, http.StatusBadGateway, problem.TypeUpstream, "Role lookup failed", err, env)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			ctx = context.WithValue(ctx, roleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireEmployee must run inside RequireIdentity; non-staff get 403.
func RequireEmployee(env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFrom(r.Context())
			if !ok || !role.IsEmployee {
				problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Forbidden", errors.New("employee access required"), env,
					problem.WithDetail("Staff access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func IdentityFrom(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	return identity, ok
}

func RoleFrom(ctx context.Context) (auth.Role, bool) {
	role, ok := ctx.Value(roleKey).(auth.Role)
	return role, ok
}

// WithIdentity is used by tests and by handlers invoked outside the chain.
func WithIdentity(ctx context.Context, identity auth.Identity, role auth.Role) context.Context {
	ctx = context.WithValue(ctx, identityKey, identity)
	return context.WithValue(ctx, roleKey, role)
}
