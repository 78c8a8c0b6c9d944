package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const adminSubject = "admin"

type SessionClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// SessionManager issues the short-lived token stored in the admin cookie
// after the shared password has been presented.
type SessionManager struct {
	secret []byte
	expiry time.Duration
	issuer string
	now    func() time.Time
}

func NewSessionManager(secret string, expiry time.Duration, issuer string) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
		now:    time.Now,
	}
}

func (m *SessionManager) Expiry() time.Duration {
	return m.expiry
}

func (m *SessionManager) Issue() (string, error) {
	if len(m.secret) == 0 {
		return "", ErrInvalidToken
	}

	now := m.now()
	claims := &SessionClaims{
		Scope: adminSubject,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminSubject,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *SessionManager) Validate(tokenString string) (*SessionClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.Scope != adminSubject {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
