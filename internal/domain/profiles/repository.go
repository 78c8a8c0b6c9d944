package profiles

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("profile not found")

type Profile struct {
	ID               string
	Email            string
	FullName         string
	Number           string
	InstaID          string
	Organisation     string
	Age              *int
	Gender           string
	Role             string
	MarketingConsent bool
	TermsAccepted    bool
	PhotoURL         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Repository interface {
	Get(ctx context.Context, id string) (*Profile, error)
	Upsert(ctx context.Context, profile Profile) (*Profile, error)
	SetPhotoURL(ctx context.Context, id string, url string) error
}
