package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sbms-academy/server/internal/sanitize"
)

const (
	DefaultLocation     = "hyderabad"
	DefaultSessionImage = "/images/placeholder.png"
	DefaultCurrency     = "INR"
)

var ErrInvalidEvent = errors.New("invalid event")

type SaveInput struct {
	ID               string         `json:"id" validate:"omitempty,uuid"`
	Name             string         `json:"name" validate:"required,max=200"`
	Description      string         `json:"description"`
	Venue            string         `json:"venue" validate:"required,max=200"`
	Location         string         `json:"location" validate:"max=120"`
	StartTime        time.Time      `json:"startTime"`
	EndTime          time.Time      `json:"endTime"`
	ImageURL         string         `json:"imageFile" validate:"omitempty,url"`
	IDCardTemplateID string         `json:"idcard_template_id" validate:"required,uuid"`
	Sessions         []SessionInput `json:"sessions" validate:"dive"`
}

type SessionInput struct {
	ID               string    `json:"id" validate:"omitempty,uuid"`
	Name             string    `json:"name" validate:"required,max=200"`
	Description      string    `json:"description"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	ImageURL         string    `json:"image_url"`
	Cost             *float64  `json:"cost" validate:"omitempty,min=0"`
	Currency         string    `json:"currency" validate:"omitempty,len=3"`
	RegistrationLink string    `json:"registration_link" validate:"omitempty,url"`
	UPILink          string    `json:"upi_link"`
}

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

func (s *Service) List(ctx context.Context, includeSessions bool) ([]Event, error) {
	return s.repo.List(ctx, includeSessions)
}

// Sessions lists the sessions of an existing event.
func (s *Service) Sessions(ctx context.Context, eventID string) ([]Session, error) {
	if _, err := s.repo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListSessions(ctx, eventID)
}

func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetSession(ctx context.Context, eventID, sessionID string) (*Session, error) {
	return s.repo.GetSession(ctx, eventID, sessionID)
}

// Save creates or updates an event together with its sessions.
func (s *Service) Save(ctx context.Context, input SaveInput) (SaveResult, error) {
	params, err := s.normalize(input)
	if err != nil {
		return SaveResult{}, err
	}
	return s.repo.Save(ctx, params)
}

func (s *Service) normalize(input SaveInput) (SaveParams, error) {
	if err := s.validate.Struct(input); err != nil {
		return SaveParams{}, fmt.Errorf("%w: %s", ErrInvalidEvent, err.Error())
	}
	if err := checkWindow("event", input.StartTime, input.EndTime); err != nil {
		return SaveParams{}, err
	}

	location := strings.ToLower(sanitize.Text(input.Location))
	if location == "" {
		location = DefaultLocation
	}
	end := input.EndTime.UTC()
	params := SaveParams{
		Event: Event{
			ID:          strings.TrimSpace(input.ID),
			Name:        sanitize.Text(input.Name),
			Description: sanitize.HTML(input.Description),
			Venue:       sanitize.Text(input.Venue),
			Location:    location,
			ImageURL:    strings.TrimSpace(input.ImageURL),
			StartTime:   input.StartTime.UTC(),
			EndTime:     &end,
		},
		IDCardTemplateID: input.IDCardTemplateID,
		Sessions:         make([]Session, 0, len(input.Sessions)),
	}

	for i, in := range input.Sessions {
		if err := checkWindow(fmt.Sprintf("session %d", i), in.StartTime, in.EndTime); err != nil {
			return SaveParams{}, err
		}
		image := strings.TrimSpace(in.ImageURL)
		if image == "" {
			image = DefaultSessionImage
		}
		currency := strings.ToUpper(strings.TrimSpace(in.Currency))
		if currency == "" {
			currency = DefaultCurrency
		}
		params.Sessions = append(params.Sessions, Session{
			ID:               strings.TrimSpace(in.ID),
			EventID:          params.Event.ID,
			Name:             sanitize.Text(in.Name),
			Description:      sanitize.HTML(in.Description),
			StartTime:        in.StartTime.UTC(),
			EndTime:          in.EndTime.UTC(),
			Cost:             in.Cost,
			Currency:         currency,
			ImageURL:         image,
			RegistrationLink: strings.TrimSpace(in.RegistrationLink),
			UPILink:          strings.TrimSpace(in.UPILink),
		})
	}
	return params, nil
}

func checkWindow(what string, start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: %s start and end time are required", ErrInvalidEvent, what)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: %s ends before it starts", ErrInvalidEvent, what)
	}
	return nil
}
