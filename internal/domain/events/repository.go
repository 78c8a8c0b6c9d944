package events

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("event not found")
	ErrSessionNotFound = errors.New("session not found")
)

type Event struct {
	ID          string
	Name        string
	Description string
	Venue       string
	Location    string
	ImageURL    string
	StartTime   time.Time
	EndTime     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Sessions    []Session
}

type Session struct {
	ID               string
	EventID          string
	Name             string
	Description      string
	StartTime        time.Time
	EndTime          time.Time
	Cost             *float64
	Currency         string
	ImageURL         string
	RegistrationLink string
	UPILink          string
	CreatedAt        time.Time
}

// Paid reports whether registering for the session requires a payment.
func (s Session) Paid() bool {
	return s.Cost != nil && *s.Cost > 0
}

// SaveParams carries a validated event and its sessions for a single
// transactional write. Empty IDs are created, non-empty IDs are updated.
type SaveParams struct {
	Event            Event
	Sessions         []Session
	IDCardTemplateID string
}

type SaveResult struct {
	Event    Event
	Sessions []Session
	// Linked counts sessions that gained an ID card template during the save.
	Linked int
}

type Repository interface {
	List(ctx context.Context, includeSessions bool) ([]Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	ListSessions(ctx context.Context, eventID string) ([]Session, error)
	GetSession(ctx context.Context, eventID, sessionID string) (*Session, error)
	Save(ctx context.Context, params SaveParams) (SaveResult, error)
}
