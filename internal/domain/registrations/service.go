package registrations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sbms-academy/server/internal/auth"
	"github.com/sbms-academy/server/internal/domain/events"
	"github.com/sbms-academy/server/internal/domain/ids"
	"github.com/sbms-academy/server/internal/domain/profiles"
	"github.com/sbms-academy/server/internal/media"
	"github.com/sbms-academy/server/internal/tickets"
)

type Catalog interface {
	Get(ctx context.Context, id string) (*events.Event, error)
	GetSession(ctx context.Context, eventID, sessionID string) (*events.Session, error)
}

type ProfileReader interface {
	Get(ctx context.Context, identity auth.Identity) (*profiles.Profile, error)
}

// Notifier is told about every new registration. Delivery happens out of
// band; a failure here never fails the registration.
type Notifier interface {
	RegistrationCreated(ctx context.Context, registrationID string) error
}

type RegisterInput struct {
	EventID          string  `json:"event_id"`
	SessionID        *string `json:"session_id"`
	Reference        string  `json:"reference"`
	MarketingConsent *bool   `json:"marketing_consent"`
}

type RegisterResult struct {
	Registration    Registration
	Event           events.Event
	Session         *events.Session
	PaymentRequired bool
	UPILink         string
	Warnings        []string
}

type QRResult struct {
	URL      string
	Warnings []string
}

type Service struct {
	repo     Repository
	catalog  Catalog
	profiles ProfileReader
	assets   media.Store
	notifier Notifier
	logger   zerolog.Logger
}

func NewService(repo Repository, catalog Catalog, profiles ProfileReader, assets media.Store, notifier Notifier, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		profiles: profiles,
		assets:   assets,
		notifier: notifier,
		logger:   logger.With().Str("component", "registrations").Logger(),
	}
}

// List runs a filter produced by BuildFilter.
func (s *Service) List(ctx context.Context, filter QueryFilter) ([]Registration, error) {
	return s.repo.List(ctx, filter)
}

// Get returns a registration visible to the caller: its owner or any employee.
func (s *Service) Get(ctx context.Context, id string, identity auth.Identity, role auth.Role) (*Registration, error) {
	reg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !role.IsEmployee && reg.UserID != identity.ID {
		return nil, ErrForbidden
	}
	return reg, nil
}

func (s *Service) Register(ctx context.Context, identity auth.Identity, input RegisterInput) (RegisterResult, error) {
	input.EventID = strings.TrimSpace(input.EventID)
	if input.EventID == "" {
		return RegisterResult{}, fmt.Errorf("%w: event_id is required", ErrInvalidInput)
	}
	if input.SessionID != nil && strings.TrimSpace(*input.SessionID) == "" {
		input.SessionID = nil
	}

	profile, err := s.profiles.Get(ctx, identity)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			return RegisterResult{}, ErrProfileRequired
		}
		return RegisterResult{}, fmt.Errorf("load profile: %w", err)
	}

	event, err := s.catalog.Get(ctx, input.EventID)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			return RegisterResult{}, ErrEventNotFound
		}
		return RegisterResult{}, fmt.Errorf("load event: %w", err)
	}

	var session *events.Session
	if input.SessionID != nil {
		session, err = s.catalog.GetSession(ctx, input.EventID, *input.SessionID)
		if err != nil {
			if errors.Is(err, events.ErrSessionNotFound) {
				return RegisterResult{}, ErrSessionNotFound
			}
			return RegisterResult{}, fmt.Errorf("load session: %w", err)
		}
	}

	exists, err := s.repo.Exists(ctx, identity.ID, input.EventID, input.SessionID)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("check duplicate: %w", err)
	}
	if exists {
		return RegisterResult{}, ErrAlreadyRegistered
	}

	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		if reference, err = ids.NewReference(); err != nil {
			return RegisterResult{}, fmt.Errorf("mint reference: %w", err)
		}
	}

	paymentRequired := session != nil && session.Paid()
	status := PaymentCompleted
	if paymentRequired {
		status = PaymentPending
	}
	consent := profile.MarketingConsent
	if input.MarketingConsent != nil {
		consent = *input.MarketingConsent
	}

	reg, err := s.repo.Create(ctx, CreateParams{
		UserID:           identity.ID,
		EventID:          input.EventID,
		SessionID:        input.SessionID,
		Reference:        reference,
		PaymentStatus:    status,
		MarketingConsent: consent,
	})
	if err != nil {
		return RegisterResult{}, err
	}

	result := RegisterResult{Event: *event, Session: session, PaymentRequired: paymentRequired}
	if session != nil {
		result.UPILink = session.UPILink
	}

	reg.QRCodeURL = tickets.DetailsPath(reg.ID, reg.EventID, reg.SessionID)
	if err := s.repo.SetQRCodeURL(ctx, reg.ID, reg.QRCodeURL); err != nil {
		s.logger.Warn().Err(err).Str("registration_id", reg.ID).Msg("failed to store qr details url")
		result.Warnings = append(result.Warnings, "qr details link not saved")
	}

	if s.notifier != nil {
		if err := s.notifier.RegistrationCreated(ctx, reg.ID); err != nil {
			s.logger.Warn().Err(err).Str("registration_id", reg.ID).Msg("failed to queue confirmation")
			result.Warnings = append(result.Warnings, "confirmation email not queued")
		}
	}

	result.Registration = *reg
	return result, nil
}

// GenerateQRCode renders the door pass for a registration and stores it on
// the CDN. Failing to record the URL on the registration is only a warning.
func (s *Service) GenerateQRCode(ctx context.Context, registrationID string) (QRResult, error) {
	registrationID = strings.TrimSpace(registrationID)
	if registrationID == "" {
		return QRResult{}, fmt.Errorf("%w: registration id is required", ErrInvalidInput)
	}

	reg, err := s.repo.GetByID(ctx, registrationID)
	if err != nil {
		return QRResult{}, err
	}

	png, err := tickets.PNG(tickets.Payload(reg.ID, reg.Reference))
	if err != nil {
		return QRResult{}, err
	}

	url, err := s.assets.Put(ctx, media.Object{
		Path:        tickets.ObjectPath(reg.ID),
		ContentType: "image/png",
		Data:        png,
	})
	if err != nil {
		return QRResult{}, fmt.Errorf("store qr code: %w", err)
	}

	result := QRResult{URL: url}
	if err := s.repo.SetQRCodeURL(ctx, reg.ID, url); err != nil {
		s.logger.Warn().Err(err).Str("registration_id", reg.ID).Msg("failed to store qr code url")
		result.Warnings = append(result.Warnings, "qr code url not saved on registration")
	}
	return result, nil
}

func (s *Service) ListForExport(ctx context.Context, filter ExportFilter) ([]Registration, error) {
	return s.repo.ListForExport(ctx, filter)
}

func (s *Service) ListAssets(ctx context.Context, sessionID string) ([]Asset, error) {
	return s.repo.ListAssets(ctx, sessionID)
}
