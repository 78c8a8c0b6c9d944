package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/sbms-academy/server/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// Confirmation holds what goes into a registration confirmation email.
type Confirmation struct {
	To             string
	Name           string
	EventName      string
	SessionName    string
	StartTime      time.Time
	Reference      string
	PaymentPending bool
	UPILink        string
	PassURL        string
	CurrentYear    int
}

// Service sends transactional email through Resend. When disabled it only
// logs what would have been sent.
type Service struct {
	config       config.EmailConfig
	templates    *template.Template
	resendClient *resend.Client
	logger       zerolog.Logger
}

func NewService(cfg config.EmailConfig, logger zerolog.Logger) (*Service, error) {
	if cfg.Enabled {
		if err := validateEmailAddress(cfg.From); err != nil {
			return nil, fmt.Errorf("invalid sender email in config: %w", err)
		}
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY is required when email is enabled")
		}
	}

	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	svc := &Service{
		config:    cfg,
		templates: templates,
		logger:    logger.With().Str("component", "email").Logger(),
	}
	if cfg.Enabled {
		svc.resendClient = resend.NewClient(cfg.ResendAPIKey)
	}
	return svc, nil
}

func (s *Service) SendRegistrationConfirmation(ctx context.Context, msg Confirmation) error {
	if err := validateEmailAddress(msg.To); err != nil {
		return fmt.Errorf("invalid recipient email: %w", err)
	}
	if err := validatePassURL(msg.PassURL); err != nil {
		return fmt.Errorf("invalid pass link: %w", err)
	}

	if !s.config.Enabled {
		s.logger.Info().
			Str("to", msg.To).
			Str("reference", msg.Reference).
			Msg("email service disabled, skipping registration confirmation")
		return nil
	}

	if msg.CurrentYear == 0 {
		msg.CurrentYear = time.Now().Year()
	}
	htmlBody, err := s.renderTemplate("registration_confirmation.html", msg)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("You're registered for %s", msg.EventName)
	if err := s.sendViaResend(ctx, msg.To, subject, htmlBody); err != nil {
		return fmt.Errorf("failed to send registration confirmation: %w", err)
	}
	return nil
}

func validateEmailAddress(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	if strings.ContainsAny(addr.Address, "\r\n") {
		return fmt.Errorf("invalid email address: contains newline characters")
	}
	return nil
}

func validatePassURL(link string) error {
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (must be http or https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

func (s *Service) renderTemplate(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}
