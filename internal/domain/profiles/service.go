package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sbms-academy/server/internal/auth"
	"github.com/sbms-academy/server/internal/sanitize"
)

var ErrInvalidProfile = errors.New("invalid profile")

// SaveInput is the body of a profile upsert.
type SaveInput struct {
	FullName         string `json:"full_name" validate:"required,max=120"`
	Number           string `json:"number" validate:"required,min=7,max=20"`
	InstaID          string `json:"insta_id" validate:"max=60"`
	Organisation     string `json:"organisation" validate:"max=120"`
	Age              *int   `json:"age" validate:"omitempty,min=10,max=100"`
	Gender           string `json:"gender" validate:"omitempty,oneof=female male other"`
	MarketingConsent bool   `json:"marketing_consent"`
	TermsAccepted    bool   `json:"terms_accepted"`
}

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

func (s *Service) Get(ctx context.Context, identity auth.Identity) (*Profile, error) {
	return s.repo.Get(ctx, identity.ID)
}

// Save creates or replaces the caller's profile. The terms must be accepted
// on every save.
func (s *Service) Save(ctx context.Context, identity auth.Identity, input SaveInput) (*Profile, error) {
	input.FullName = sanitize.Text(input.FullName)
	input.Number = sanitize.Phone(input.Number)
	input.InstaID = sanitize.Handle(input.InstaID)
	input.Organisation = sanitize.Text(input.Organisation)
	input.Gender = strings.ToLower(strings.TrimSpace(input.Gender))

	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidProfile, describe(err))
	}
	if !input.TermsAccepted {
		return nil, fmt.Errorf("%w: terms must be accepted", ErrInvalidProfile)
	}

	return s.repo.Upsert(ctx, Profile{
		ID:               identity.ID,
		Email:            identity.Email,
		FullName:         input.FullName,
		Number:           input.Number,
		InstaID:          input.InstaID,
		Organisation:     input.Organisation,
		Age:              input.Age,
		Gender:           input.Gender,
		MarketingConsent: input.MarketingConsent,
		TermsAccepted:    input.TermsAccepted,
	})
}

// SetPhotoURL links an uploaded photo to the profile.
func (s *Service) SetPhotoURL(ctx context.Context, userID string, url string) error {
	return s.repo.SetPhotoURL(ctx, userID, url)
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field())+" "+fe.Tag())
	}
	return strings.Join(fields, ", ")
}
