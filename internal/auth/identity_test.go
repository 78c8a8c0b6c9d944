package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signIdentityToken(t *testing.T, secret string, claims IdentityClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(subject string) IdentityClaims {
	return IdentityClaims{
		Email: "bride@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestAuthenticateBearer(t *testing.T) {
	authn := NewAuthenticator("identity-secret", "", "sb-access-token")
	token := signIdentityToken(t, "identity-secret", validClaims("user-1"))

	req := httptest.NewRequest(http.MethodGet, "/api/registrations", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	identity, err := authn.Authenticate(req)
	require.NoError(t, err)
	require.Equal(t, Identity{ID: "user-1", Email: "bride@example.com"}, identity)
}

func TestAuthenticateCookie(t *testing.T) {
	authn := NewAuthenticator("identity-secret", "", "sb-access-token")
	token := signIdentityToken(t, "identity-secret", validClaims("user-2"))

	req := httptest.NewRequest(http.MethodGet, "/api/registrations", nil)
	req.AddCookie(&http.Cookie{Name: "sb-access-token", Value: token})

	identity, err := authn.Authenticate(req)
	require.NoError(t, err)
	require.Equal(t, "user-2", identity.ID)
}

func TestAuthenticateFailures(t *testing.T) {
	authn := NewAuthenticator("identity-secret", "https://id.sbms.academy", "sb-access-token")

	expired := validClaims("user-1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	expired.Issuer = "https://id.sbms.academy"

	noSubject := validClaims("")
	noSubject.Issuer = "https://id.sbms.academy"

	wrongIssuer := validClaims("user-1")
	wrongIssuer.Issuer = "https://elsewhere"

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing", header: ""},
		{name: "malformed header", header: "Token abc"},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "wrong secret", header: "Bearer " + signIdentityToken(t, "other", validClaims("user-1"))},
		{name: "expired", header: "Bearer " + signIdentityToken(t, "identity-secret", expired)},
		{name: "no subject", header: "Bearer " + signIdentityToken(t, "identity-secret", noSubject)},
		{name: "wrong issuer", header: "Bearer " + signIdentityToken(t, "identity-secret", wrongIssuer)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			_, err := authn.Authenticate(req)
			require.True(t, errors.Is(err, ErrUnauthorized), "got %v", err)
		})
	}
}

func TestAuthenticateRejectsNoneAlgorithm(t *testing.T) {
	authn := NewAuthenticator("identity-secret", "", "")
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims("user-1")).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = authn.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenFromHeader(t *testing.T) {
	_, err := TokenFromHeader("nope")
	require.ErrorIs(t, err, ErrMissingToken)

	token, err := TokenFromHeader("bearer token")
	require.NoError(t, err)
	require.Equal(t, "token", token)
}
