package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/sbms-academy/server/internal/sanitize"
)

const (
	InteractionFollowUp = "follow_up"
	StatusNew           = "new"
)

type CreateInput struct {
	Name    string `json:"name" validate:"max=120"`
	Number  string `json:"number" validate:"required,min=7,max=20"`
	InstaID string `json:"insta_id" validate:"max=60"`
	Source  string `json:"source" validate:"max=60"`
	Notes   string `json:"notes" validate:"max=2000"`
}

type InteractionInput struct {
	LeadID     string     `json:"lead_id" validate:"required"`
	Type       string     `json:"interaction_type" validate:"required,max=40"`
	Status     string     `json:"status" validate:"required,max=40"`
	Notes      string     `json:"notes" validate:"required,max=2000"`
	FollowUpAt *time.Time `json:"follow_up_at"`
}

type Service struct {
	repo     Repository
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
		logger:   logger.With().Str("component", "leads").Logger(),
	}
}

// Create records a new lead on behalf of employeeID. Notes, when present,
// become the lead's first follow-up interaction.
func (s *Service) Create(ctx context.Context, employeeID string, input CreateInput) (*Lead, error) {
	input.Name = sanitize.Text(input.Name)
	input.Number = sanitize.Phone(input.Number)
	input.InstaID = sanitize.Handle(input.InstaID)
	input.Source = strings.ToLower(sanitize.Text(input.Source))
	input.Notes = sanitize.Text(input.Notes)

	if err := s.validate.Struct(input); err != nil {
		if input.Number == "" {
			return nil, fmt.Errorf("%w: phone number is required", ErrInvalidLead)
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidLead, err.Error())
	}

	exists, err := s.repo.ExistsByNumber(ctx, input.Number)
	if err != nil {
		return nil, fmt.Errorf("check lead number: %w", err)
	}
	if exists {
		return nil, ErrDuplicate
	}

	lead, err := s.repo.Create(ctx, Lead{
		Name:    input.Name,
		Number:  input.Number,
		InstaID: input.InstaID,
		Source:  input.Source,
	})
	if err != nil {
		return nil, err
	}

	if input.Notes != "" {
		first, err := s.repo.AddInteraction(ctx, Interaction{
			LeadID:      lead.ID,
			Type:        InteractionFollowUp,
			Status:      StatusNew,
			ContactedBy: employeeID,
			Notes:       input.Notes,
		})
		if err != nil {
			s.logger.Warn().Err(err).Str("lead_id", lead.ID).Msg("lead created without initial interaction")
		} else {
			lead.Interactions = append(lead.Interactions, *first)
		}
	}
	return lead, nil
}

func (s *Service) AddInteraction(ctx context.Context, employeeID string, input InteractionInput) (*Interaction, error) {
	input.LeadID = strings.TrimSpace(input.LeadID)
	input.Type = strings.TrimSpace(input.Type)
	input.Status = strings.TrimSpace(input.Status)
	input.Notes = sanitize.Text(input.Notes)

	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: lead_id, interaction_type, status, and notes are required", ErrInvalidAction)
	}

	exists, err := s.repo.Exists(ctx, input.LeadID)
	if err != nil {
		return nil, fmt.Errorf("check lead: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	interaction, err := s.repo.AddInteraction(ctx, Interaction{
		LeadID:      input.LeadID,
		Type:        input.Type,
		Status:      input.Status,
		ContactedBy: employeeID,
		Notes:       input.Notes,
		FollowUpAt:  input.FollowUpAt,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Touch(ctx, input.LeadID); err != nil {
		s.logger.Warn().Err(err).Str("lead_id", input.LeadID).Msg("failed to bump lead updated_at")
	}
	return interaction, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Lead, error) {
	filter.Source = strings.ToLower(strings.TrimSpace(filter.Source))
	return s.repo.List(ctx, filter)
}

func (s *Service) Employees(ctx context.Context) ([]Employee, error) {
	return s.repo.ListEmployees(ctx)
}

// IsValidation reports whether err is caused by bad caller input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidLead) || errors.Is(err, ErrInvalidAction)
}
