// Package testauth mints identity-service style access tokens for local
// development and tests. It must never be reachable in production; the
// token command refuses to run there.
package testauth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sbms-academy/server/internal/auth"
)

const defaultTTL = time.Hour

var ErrMissingSecret = errors.New("testauth: signing secret is required")

type Config struct {
	// Secret must match IDENTITY_JWT_SECRET of the server under test.
	Secret  string
	Issuer  string
	Subject string
	Email   string
	TTL     time.Duration
}

type TokenIssuer struct {
	cfg Config
	now func() time.Time
}

func NewTokenIssuer(cfg Config) (*TokenIssuer, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	return &TokenIssuer{cfg: cfg, now: time.Now}, nil
}

// Token signs an access token for the configured subject.
func (i *TokenIssuer) Token() (string, error) {
	if i.cfg.Subject == "" {
		return "", errors.New("testauth: subject is required")
	}
	now := i.now()
	claims := auth.IdentityClaims{
		Email: i.cfg.Email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   i.cfg.Subject,
			Issuer:    i.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.cfg.Secret))
}

// AddAuth sets a bearer token on req.
func (i *TokenIssuer) AddAuth(req *http.Request) error {
	token, err := i.Token()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}
