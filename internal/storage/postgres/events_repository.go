package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sbms-academy/server/internal/domain/events"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
}

const eventColumns = `e.id, e.name, e.description, e.venue, e.location, e.image_url,
       e.start_time, e.end_time, e.created_at, e.updated_at`

const sessionColumns = `s.id, s.event_id, s.name, s.description, s.start_time, s.end_time,
       s.cost::float8, s.currency, s.image_url, s.registration_link, s.upi_link, s.created_at`

type eventRow struct {
	ID          string
	Name        string
	Description string
	Venue       string
	Location    string
	ImageURL    *string
	StartTime   time.Time
	EndTime     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (row eventRow) toDomain() events.Event {
	return events.Event{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Venue:       row.Venue,
		Location:    row.Location,
		ImageURL:    derefString(row.ImageURL),
		StartTime:   row.StartTime,
		EndTime:     row.EndTime,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func scanEvent(row pgx.Row) (events.Event, error) {
	var r eventRow
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.Venue, &r.Location, &r.ImageURL,
		&r.StartTime, &r.EndTime, &r.CreatedAt, &r.UpdatedAt)
	return r.toDomain(), err
}

type sessionRow struct {
	ID               string
	EventID          string
	Name             string
	Description      *string
	StartTime        time.Time
	EndTime          time.Time
	Cost             *float64
	Currency         string
	ImageURL         *string
	RegistrationLink *string
	UPILink          *string
	CreatedAt        time.Time
}

func scanSession(row pgx.Row) (events.Session, error) {
	var r sessionRow
	err := row.Scan(&r.ID, &r.EventID, &r.Name, &r.Description, &r.StartTime, &r.EndTime,
		&r.Cost, &r.Currency, &r.ImageURL, &r.RegistrationLink, &r.UPILink, &r.CreatedAt)
	return events.Session{
		ID:               r.ID,
		EventID:          r.EventID,
		Name:             r.Name,
		Description:      derefString(r.Description),
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		Cost:             r.Cost,
		Currency:         r.Currency,
		ImageURL:         derefString(r.ImageURL),
		RegistrationLink: derefString(r.RegistrationLink),
		UPILink:          derefString(r.UPILink),
		CreatedAt:        r.CreatedAt,
	}, err
}

// List returns every event by start time. Sessions are loaded in a second
// query and attached in memory.
func (r *EventRepository) List(ctx context.Context, includeSessions bool) ([]events.Event, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+eventColumns+`
  FROM events e
 ORDER BY e.start_time ASC, e.id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items := make([]events.Event, 0)
	index := make(map[string]int)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if includeSessions {
			event.Sessions = []events.Session{}
		}
		index[event.ID] = len(items)
		items = append(items, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	if !includeSessions || len(items) == 0 {
		return items, nil
	}

	sessionRows, err := r.pool.Query(ctx, `
SELECT `+sessionColumns+`
  FROM sessions s
 ORDER BY s.start_time ASC, s.id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer sessionRows.Close()

	for sessionRows.Next() {
		session, err := scanSession(sessionRows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if i, ok := index[session.EventID]; ok {
			items[i].Sessions = append(items[i].Sessions, session)
		}
	}
	if err := sessionRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return items, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*events.Event, error) {
	event, err := scanEvent(r.pool.QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM events e
 WHERE e.id = $1
`, id))
	if err != nil {
		if isNotFound(err) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &event, nil
}

func (r *EventRepository) ListSessions(ctx context.Context, eventID string) ([]events.Session, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+sessionColumns+`
  FROM sessions s
 WHERE s.event_id = $1
 ORDER BY s.start_time ASC, s.id ASC
`, eventID)
	if err != nil {
		if isNotFound(err) {
			return []events.Session{}, nil
		}
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]events.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		if isNotFound(err) {
			return []events.Session{}, nil
		}
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// GetSession only finds a session through the event it belongs to.
func (r *EventRepository) GetSession(ctx context.Context, eventID, sessionID string) (*events.Session, error) {
	session, err := scanSession(r.pool.QueryRow(ctx, `
SELECT `+sessionColumns+`
  FROM sessions s
 WHERE s.id = $1 AND s.event_id = $2
`, sessionID, eventID))
	if err != nil {
		if isNotFound(err) {
			return nil, events.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

// Save writes the event, its sessions and their ID card links in one
// transaction. Nothing is written when any step fails.
func (r *EventRepository) Save(ctx context.Context, params events.SaveParams) (events.SaveResult, error) {
	var result events.SaveResult
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		event, err := saveEvent(ctx, tx, params.Event)
		if err != nil {
			return err
		}
		result.Event = event

		result.Sessions = make([]events.Session, 0, len(params.Sessions))
		for _, in := range params.Sessions {
			in.EventID = event.ID
			session, err := saveSession(ctx, tx, in)
			if err != nil {
				return err
			}
			result.Sessions = append(result.Sessions, session)

			if params.IDCardTemplateID == "" {
				continue
			}
			linked, err := linkIDCard(ctx, tx, session.ID, params.IDCardTemplateID)
			if err != nil {
				return err
			}
			if linked {
				result.Linked++
			}
		}
		return nil
	})
	if err != nil {
		return events.SaveResult{}, err
	}
	result.Event.Sessions = result.Sessions
	return result, nil
}

func saveEvent(ctx context.Context, q queryer, e events.Event) (events.Event, error) {
	if e.ID == "" {
		event, err := scanEvent(q.QueryRow(ctx, `
INSERT INTO events AS e (name, description, venue, location, image_url, start_time, end_time)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING `+eventColumns,
			e.Name, e.Description, e.Venue, e.Location, nullString(e.ImageURL), e.StartTime, e.EndTime))
		if err != nil {
			return events.Event{}, fmt.Errorf("insert event: %w", err)
		}
		return event, nil
	}

	event, err := scanEvent(q.QueryRow(ctx, `
UPDATE events AS e
   SET name = $2, description = $3, venue = $4, location = $5, image_url = $6,
       start_time = $7, end_time = $8, updated_at = now()
 WHERE e.id = $1
RETURNING `+eventColumns,
		e.ID, e.Name, e.Description, e.Venue, e.Location, nullString(e.ImageURL), e.StartTime, e.EndTime))
	if err != nil {
		if isNotFound(err) {
			return events.Event{}, events.ErrNotFound
		}
		return events.Event{}, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// saveSession updates in place only when the session already belongs to the
// event; an id from another event is reported as not found.
func saveSession(ctx context.Context, q queryer, s events.Session) (events.Session, error) {
	if s.ID == "" {
		session, err := scanSession(q.QueryRow(ctx, `
INSERT INTO sessions AS s (event_id, name, description, start_time, end_time, cost, currency,
                           image_url, registration_link, upi_link)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9, $10)
RETURNING `+sessionColumns,
			s.EventID, s.Name, nullString(s.Description), s.StartTime, s.EndTime, s.Cost, s.Currency,
			nullString(s.ImageURL), nullString(s.RegistrationLink), nullString(s.UPILink)))
		if err != nil {
			return events.Session{}, fmt.Errorf("insert session: %w", err)
		}
		return session, nil
	}

	session, err := scanSession(q.QueryRow(ctx, `
UPDATE sessions AS s
   SET name = $3, description = $4, start_time = $5, end_time = $6, cost = $7::numeric,
       currency = $8, image_url = $9, registration_link = $10, upi_link = $11
 WHERE s.id = $1 AND s.event_id = $2
RETURNING `+sessionColumns,
		s.ID, s.EventID, s.Name, nullString(s.Description), s.StartTime, s.EndTime, s.Cost,
		s.Currency, nullString(s.ImageURL), nullString(s.RegistrationLink), nullString(s.UPILink)))
	if err != nil {
		if isNotFound(err) {
			return events.Session{}, events.ErrSessionNotFound
		}
		return events.Session{}, fmt.Errorf("update session: %w", err)
	}
	return session, nil
}

// linkIDCard attaches the template unless the session already has one.
func linkIDCard(ctx context.Context, q queryer, sessionID, templateID string) (bool, error) {
	tag, err := q.Exec(ctx, `
INSERT INTO session_id_cards (session_id, id_card_details_id)
VALUES ($1, $2)
ON CONFLICT (session_id) DO NOTHING
`, sessionID, templateID)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return false, fmt.Errorf("%w: unknown id card template", events.ErrInvalidEvent)
		}
		return false, fmt.Errorf("link id card: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
