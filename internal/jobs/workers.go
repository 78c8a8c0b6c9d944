package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/rs/zerolog"
	"github.com/sbms-academy/server/internal/domain/registrations"
	"github.com/sbms-academy/server/internal/email"
)

// RegistrationConfirmationArgs asks for the confirmation email of one
// registration to be sent.
type RegistrationConfirmationArgs struct {
	RegistrationID string `json:"registration_id"`
}

func (RegistrationConfirmationArgs) Kind() string { return JobKindRegistrationConfirmation }

// RegistrationLoader loads a registration with its participant, event and
// session joined in.
type RegistrationLoader interface {
	GetByID(ctx context.Context, id string) (*registrations.Registration, error)
}

type ConfirmationSender interface {
	SendRegistrationConfirmation(ctx context.Context, msg email.Confirmation) error
}

type RegistrationConfirmationWorker struct {
	river.WorkerDefaults[RegistrationConfirmationArgs]
	Registrations RegistrationLoader
	Mailer        ConfirmationSender
	BaseURL       string
	Logger        zerolog.Logger
}

func (RegistrationConfirmationWorker) Kind() string { return JobKindRegistrationConfirmation }

func (w RegistrationConfirmationWorker) Work(ctx context.Context, job *river.Job[RegistrationConfirmationArgs]) error {
	if job == nil {
		return fmt.Errorf("registration confirmation job missing")
	}
	if w.Registrations == nil || w.Mailer == nil {
		return fmt.Errorf("registration confirmation worker not configured")
	}

	reg, err := w.Registrations.GetByID(ctx, job.Args.RegistrationID)
	if err != nil {
		if errors.Is(err, registrations.ErrNotFound) {
			return river.JobCancel(fmt.Errorf("registration %s: %w", job.Args.RegistrationID, err))
		}
		return fmt.Errorf("load registration: %w", err)
	}

	msg, ok := confirmationFor(reg, w.BaseURL)
	if !ok {
		w.Logger.Warn().
			Str("registration_id", reg.ID).
			Msg("registration has no participant email, skipping confirmation")
		return nil
	}

	if err := w.Mailer.SendRegistrationConfirmation(ctx, msg); err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}
	w.Logger.Info().
		Str("registration_id", reg.ID).
		Str("reference", reg.Reference).
		Msg("registration confirmation sent")
	return nil
}

func confirmationFor(reg *registrations.Registration, baseURL string) (email.Confirmation, bool) {
	if reg.User == nil || strings.TrimSpace(reg.User.Email) == "" {
		return email.Confirmation{}, false
	}

	msg := email.Confirmation{
		To:             reg.User.Email,
		Name:           reg.User.FullName,
		Reference:      reg.Reference,
		PaymentPending: reg.PaymentStatus == registrations.PaymentPending,
		PassURL:        passURL(baseURL, reg),
	}
	if reg.Event != nil {
		msg.EventName = reg.Event.Name
		msg.StartTime = reg.Event.StartTime
	}
	if reg.Session != nil {
		msg.SessionName = reg.Session.Name
		msg.StartTime = reg.Session.StartTime
		msg.UPILink = reg.Session.UPILink
	}
	return msg, true
}

func passURL(baseURL string, reg *registrations.Registration) string {
	path := reg.QRCodeURL
	if path == "" {
		path = "/registrations"
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + path
}

// NewWorkers registers every worker the server runs.
func NewWorkers(confirmation RegistrationConfirmationWorker) *river.Workers {
	workers := river.NewWorkers()
	river.AddWorker[RegistrationConfirmationArgs](workers, confirmation)
	return workers
}

// Inserter is the subset of the River client used to enqueue jobs.
type Inserter interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
}

// RiverNotifier enqueues follow-up work after a registration is stored.
type RiverNotifier struct {
	client Inserter
}

func NewRiverNotifier(client Inserter) *RiverNotifier {
	return &RiverNotifier{client: client}
}

func (n *RiverNotifier) RegistrationCreated(ctx context.Context, registrationID string) error {
	if n == nil || n.client == nil {
		return fmt.Errorf("job queue not configured")
	}
	opts := InsertOptsForKind(JobKindRegistrationConfirmation)
	if _, err := n.client.Insert(ctx, RegistrationConfirmationArgs{RegistrationID: registrationID}, &opts); err != nil {
		return fmt.Errorf("enqueue registration confirmation: %w", err)
	}
	return nil
}

var _ Inserter = (*river.Client[pgx.Tx])(nil)
