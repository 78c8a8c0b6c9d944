package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sbms-academy/server/internal/domain/registrations"
)

var _ registrations.Repository = (*RegistrationRepository)(nil)

type RegistrationRepository struct {
	pool *pgxpool.Pool
}

const registrationColumns = `r.id, r.user_id, r.event_id, r.session_id, r.registration_reference,
       r.payment_status, r.marketing_consent, r.qr_code_url, r.ticket_url, r.created_at`

// registrationDetailSelect joins the participant, event and optional session
// summaries onto each registration.
const registrationDetailSelect = `
SELECT ` + registrationColumns + `,
       u.id, u.email, u.full_name, u.number, u.insta_id, u.organisation, u.photo_url,
       e.id, e.name, e.start_time, e.image_url,
       s.id, s.name, s.start_time, s.end_time, s.cost::float8, s.upi_link
  FROM registrations r
  JOIN user_profiles u ON u.id = r.user_id
  JOIN events e ON e.id = r.event_id
  LEFT JOIN sessions s ON s.id = r.session_id`

type registrationRow struct {
	ID               string
	UserID           string
	EventID          string
	SessionID        *string
	Reference        string
	PaymentStatus    string
	MarketingConsent bool
	QRCodeURL        *string
	TicketURL        *string
	CreatedAt        time.Time
}

func (row registrationRow) toDomain() registrations.Registration {
	return registrations.Registration{
		ID:               row.ID,
		UserID:           row.UserID,
		EventID:          row.EventID,
		SessionID:        row.SessionID,
		Reference:        row.Reference,
		PaymentStatus:    row.PaymentStatus,
		MarketingConsent: row.MarketingConsent,
		QRCodeURL:        derefString(row.QRCodeURL),
		IDCardURL:        derefString(row.TicketURL),
		CreatedAt:        row.CreatedAt,
	}
}

func (row *registrationRow) targets() []any {
	return []any{&row.ID, &row.UserID, &row.EventID, &row.SessionID, &row.Reference,
		&row.PaymentStatus, &row.MarketingConsent, &row.QRCodeURL, &row.TicketURL, &row.CreatedAt}
}

func scanRegistrationDetail(row pgx.Row) (registrations.Registration, error) {
	var (
		base    registrationRow
		user    registrations.Participant
		insta   *string
		org     *string
		photo   *string
		event   registrations.EventSummary
		evImage *string

		sessionID    *string
		sessionName  *string
		sessionStart *time.Time
		sessionEnd   *time.Time
		sessionCost  *float64
		sessionUPI   *string
	)
	targets := append(base.targets(),
		&user.ID, &user.Email, &user.FullName, &user.Number, &insta, &org, &photo,
		&event.ID, &event.Name, &event.StartTime, &evImage,
		&sessionID, &sessionName, &sessionStart, &sessionEnd, &sessionCost, &sessionUPI,
	)
	if err := row.Scan(targets...); err != nil {
		return registrations.Registration{}, err
	}

	reg := base.toDomain()
	user.InstaID = derefString(insta)
	user.Organisation = derefString(org)
	user.PhotoURL = derefString(photo)
	reg.User = &user
	event.ImageURL = derefString(evImage)
	reg.Event = &event
	if sessionID != nil {
		reg.Session = &registrations.SessionSummary{
			ID:      *sessionID,
			Name:    derefString(sessionName),
			Cost:    sessionCost,
			UPILink: derefString(sessionUPI),
		}
		if sessionStart != nil {
			reg.Session.StartTime = *sessionStart
		}
		if sessionEnd != nil {
			reg.Session.EndTime = *sessionEnd
		}
	}
	return reg, nil
}

func collectRegistrations(rows pgx.Rows) ([]registrations.Registration, error) {
	defer rows.Close()
	items := make([]registrations.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistrationDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		items = append(items, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return items, nil
}

// List compares ids as text so a malformed filter value matches nothing
// instead of failing the query.
func (r *RegistrationRepository) List(ctx context.Context, filter registrations.QueryFilter) ([]registrations.Registration, error) {
	rows, err := r.pool.Query(ctx, registrationDetailSelect+`
 WHERE ($1 = '' OR r.user_id::text = $1)
   AND ($2 = '' OR r.event_id::text = $2)
   AND ($3 = '' OR r.payment_status = $3)
 ORDER BY r.created_at DESC, r.id DESC
 LIMIT $4 OFFSET $5
`,
		filter.UserID(),
		filter.EventID(),
		filter.Status(),
		filter.Limit(),
		filter.Offset(),
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return collectRegistrations(rows)
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*registrations.Registration, error) {
	reg, err := scanRegistrationDetail(r.pool.QueryRow(ctx, registrationDetailSelect+`
 WHERE r.id = $1
`, id))
	if err != nil {
		if isNotFound(err) {
			return nil, registrations.ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return &reg, nil
}

// Exists treats a missing session as its own slot: an event-only
// registration does not block one for a specific session.
func (r *RegistrationRepository) Exists(ctx context.Context, userID, eventID string, sessionID *string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
SELECT EXISTS (
  SELECT 1
    FROM registrations
   WHERE user_id = $1
     AND event_id = $2
     AND session_id IS NOT DISTINCT FROM $3::uuid
)`, userID, eventID, sessionID).Scan(&exists)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("check registration: %w", err)
	}
	return exists, nil
}

// Create relies on the unique index as the final duplicate guard; a
// concurrent double submit surfaces as ErrAlreadyRegistered.
func (r *RegistrationRepository) Create(ctx context.Context, params registrations.CreateParams) (*registrations.Registration, error) {
	var row registrationRow
	var err error
	if params.ID == "" {
		err = r.pool.QueryRow(ctx, `
INSERT INTO registrations AS r (user_id, event_id, session_id, registration_reference, payment_status, marketing_consent)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+registrationColumns,
			params.UserID, params.EventID, params.SessionID, params.Reference, params.PaymentStatus, params.MarketingConsent,
		).Scan(row.targets()...)
	} else {
		err = r.pool.QueryRow(ctx, `
INSERT INTO registrations AS r (id, user_id, event_id, session_id, registration_reference, payment_status, marketing_consent)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+registrationColumns,
			params.ID, params.UserID, params.EventID, params.SessionID, params.Reference, params.PaymentStatus, params.MarketingConsent,
		).Scan(row.targets()...)
	}
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return nil, registrations.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}
	reg := row.toDomain()
	return &reg, nil
}

func (r *RegistrationRepository) SetQRCodeURL(ctx context.Context, id string, url string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE registrations SET qr_code_url = $2 WHERE id = $1`, id, url)
	if err != nil {
		if isNotFound(err) {
			return registrations.ErrNotFound
		}
		return fmt.Errorf("set qr code url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return registrations.ErrNotFound
	}
	return nil
}

func (r *RegistrationRepository) ListForExport(ctx context.Context, filter registrations.ExportFilter) ([]registrations.Registration, error) {
	rows, err := r.pool.Query(ctx, registrationDetailSelect+`
 WHERE ($1 = '' OR r.event_id::text = $1)
   AND ($2 = '' OR r.session_id::text = $2)
 ORDER BY r.created_at DESC, r.id DESC
`, filter.EventID, filter.SessionID)
	if err != nil {
		return nil, fmt.Errorf("list registrations for export: %w", err)
	}
	return collectRegistrations(rows)
}

// ListAssets gathers the certificates and ID cards generated for a session,
// grouped by the participant's academy.
func (r *RegistrationRepository) ListAssets(ctx context.Context, sessionID string) ([]registrations.Asset, error) {
	rows, err := r.pool.Query(ctx, `
SELECT 'certificate', c.download_url, COALESCE(u.organisation, ''), u.full_name,
       COALESCE(r.registration_reference, '')
  FROM certificates c
  JOIN user_profiles u ON u.id = c.user_profile_id
  LEFT JOIN registrations r ON r.user_id = c.user_profile_id AND r.session_id = c.session_id
 WHERE c.session_id::text = $1
UNION ALL
SELECT 'id_card', r.ticket_url, COALESCE(u.organisation, ''), u.full_name, r.registration_reference
  FROM registrations r
  JOIN user_profiles u ON u.id = r.user_id
 WHERE r.session_id::text = $1
   AND r.ticket_url IS NOT NULL AND r.ticket_url <> ''
 ORDER BY 1, 3, 4
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	assets := make([]registrations.Asset, 0)
	for rows.Next() {
		var asset registrations.Asset
		var kind string
		if err := rows.Scan(&kind, &asset.URL, &asset.Academy, &asset.ParticipantName, &asset.Reference); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		asset.Kind = registrations.AssetKind(kind)
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return assets, nil
}
