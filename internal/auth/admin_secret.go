package auth

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrSecretNotConfigured = errors.New("admin password not configured")
	ErrWrongPassword       = errors.New("invalid password")
)

// AdminSecret is the single shared password guarding the admin dashboard.
type AdminSecret struct {
	value string
}

func NewAdminSecret(value string) AdminSecret {
	return AdminSecret{value: value}
}

func (s AdminSecret) Configured() bool {
	return s.value != ""
}

// Check compares a presented password against the configured one. Values
// starting with a bcrypt prefix are treated as hashes.
func (s AdminSecret) Check(password string) error {
	if !s.Configured() {
		return ErrSecretNotConfigured
	}
	if password == "" {
		return ErrWrongPassword
	}

	if isBcryptHash(s.value) {
		if err := bcrypt.CompareHashAndPassword([]byte(s.value), []byte(password)); err != nil {
			return ErrWrongPassword
		}
		return nil
	}

	if subtle.ConstantTimeCompare([]byte(s.value), []byte(password)) != 1 {
		return ErrWrongPassword
	}
	return nil
}

func isBcryptHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
