package registrations

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("registration not found")
	ErrAlreadyRegistered = errors.New("already registered for this event/session")
	ErrProfileRequired   = errors.New("user profile not found, complete your profile first")
	ErrEventNotFound     = errors.New("event not found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrInvalidInput      = errors.New("invalid registration")
	ErrForbidden         = errors.New("registration belongs to another user")
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

type Registration struct {
	ID               string
	UserID           string
	EventID          string
	SessionID        *string
	Reference        string
	PaymentStatus    string
	MarketingConsent bool
	QRCodeURL        string
	IDCardURL        string
	CreatedAt        time.Time

	User    *Participant
	Event   *EventSummary
	Session *SessionSummary
}

type Participant struct {
	ID           string
	Email        string
	FullName     string
	Number       string
	InstaID      string
	Organisation string
	PhotoURL     string
}

type EventSummary struct {
	ID        string
	Name      string
	StartTime time.Time
	ImageURL  string
}

type SessionSummary struct {
	ID        string
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Cost      *float64
	UPILink   string
}

type CreateParams struct {
	ID               string
	UserID           string
	EventID          string
	SessionID        *string
	Reference        string
	PaymentStatus    string
	MarketingConsent bool
}

// ExportFilter narrows a staff export. Empty fields match everything.
type ExportFilter struct {
	EventID   string
	SessionID string
}

type AssetKind string

const (
	AssetCertificate AssetKind = "certificate"
	AssetIDCard      AssetKind = "id_card"
)

// Asset is a generated participant file (certificate or ID card) stored on
// the media CDN.
type Asset struct {
	Kind            AssetKind
	URL             string
	Academy         string
	ParticipantName string
	Reference       string
}

type Repository interface {
	List(ctx context.Context, filter QueryFilter) ([]Registration, error)
	GetByID(ctx context.Context, id string) (*Registration, error)
	Exists(ctx context.Context, userID, eventID string, sessionID *string) (bool, error)
	Create(ctx context.Context, params CreateParams) (*Registration, error)
	SetQRCodeURL(ctx context.Context, id string, url string) error
	ListForExport(ctx context.Context, filter ExportFilter) ([]Registration, error)
	ListAssets(ctx context.Context, sessionID string) ([]Asset, error)
}
