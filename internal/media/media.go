// Package media stores user and staff images on the CDN and hands back
// their public URLs.
package media

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured = errors.New("media storage not configured")
	// ErrUpstream marks a failure reported by the CDN itself.
	ErrUpstream = errors.New("media upstream failure")
)

// Object is a file to be stored. Path is slash separated and includes the
// extension, for example "user-photos/<uid>/profile_1700000000000.jpg".
type Object struct {
	Path        string
	ContentType string
	Data        []byte
}

type Store interface {
	Put(ctx context.Context, obj Object) (string, error)
}

// Disabled rejects every write. It stands in for the CDN when no
// credentials are configured so the rest of the API keeps serving.
type Disabled struct{}

func (Disabled) Put(ctx context.Context, obj Object) (string, error) {
	return "", ErrNotConfigured
}
