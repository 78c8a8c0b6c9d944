package auth

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DerivedKeyLength is 32 bytes, the size gorilla/csrf expects and enough for HS256.
const DerivedKeyLength = 32

const (
	purposeAdminSession = "sbms-admin-session-v1"
	purposeCSRF         = "sbms-admin-csrf-v1"
)

var ErrInvalidMasterSecret = errors.New("master secret cannot be empty")

// DeriveKey derives a purpose-bound key from a master secret with
// HKDF-SHA256 (RFC 5869). Different purposes yield independent keys, so the
// admin session and CSRF keys may safely share a configured secret.
func DeriveKey(masterSecret []byte, purpose string) ([]byte, error) {
	if len(masterSecret) == 0 {
		return nil, ErrInvalidMasterSecret
	}

	reader := hkdf.New(sha256.New, masterSecret, nil, []byte(purpose))
	derivedKey := make([]byte, DerivedKeyLength)
	if _, err := io.ReadFull(reader, derivedKey); err != nil {
		return nil, err
	}
	return derivedKey, nil
}

// DeriveSessionKey keeps admin session tokens from being signed with the
// identity service's secret even when ADMIN_SESSION_SECRET falls back to it.
func DeriveSessionKey(masterSecret []byte) ([]byte, error) {
	return DeriveKey(masterSecret, purposeAdminSession)
}

func DeriveCSRFKey(masterSecret []byte) ([]byte, error) {
	return DeriveKey(masterSecret, purposeCSRF)
}
