package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnauthorized wraps every reason a request carries no usable identity.
	ErrUnauthorized = errors.New("unauthorized")
)

// Identity is the caller as asserted by the hosted identity service.
type Identity struct {
	ID    string
	Email string
}

// IdentityClaims mirrors the access tokens issued by the identity service.
type IdentityClaims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator verifies end-user access tokens presented either as a bearer
// token or in the identity service's session cookie.
type Authenticator struct {
	secret     []byte
	issuer     string
	cookieName string
}

func NewAuthenticator(secret, issuer, cookieName string) *Authenticator {
	return &Authenticator{
		secret:     []byte(secret),
		issuer:     issuer,
		cookieName: cookieName,
	}
}

// Authenticate returns the caller's identity. Any failure is reported as
// ErrUnauthorized wrapping the underlying reason.
func (a *Authenticator) Authenticate(r *http.Request) (Identity, error) {
	if a == nil || len(a.secret) == 0 {
		return Identity{}, errors.Join(ErrUnauthorized, ErrInvalidToken)
	}

	token, err := a.tokenFromRequest(r)
	if err != nil {
		return Identity{}, errors.Join(ErrUnauthorized, err)
	}

	claims, err := a.Verify(token)
	if err != nil {
		return Identity{}, errors.Join(ErrUnauthorized, err)
	}
	return Identity{ID: claims.Subject, Email: claims.Email}, nil
}

// Verify parses and validates a raw access token.
func (a *Authenticator) Verify(tokenString string) (*IdentityClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*IdentityClaims)
	if !ok || !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (a *Authenticator) tokenFromRequest(r *http.Request) (string, error) {
	if r == nil {
		return "", ErrMissingToken
	}
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		return TokenFromHeader(header)
	}
	if a.cookieName != "" {
		if cookie, err := r.Cookie(a.cookieName); err == nil && strings.TrimSpace(cookie.Value) != "" {
			return cookie.Value, nil
		}
	}
	return "", ErrMissingToken
}

func TokenFromHeader(authHeader string) (string, error) {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
