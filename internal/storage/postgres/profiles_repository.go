package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sbms-academy/server/internal/domain/profiles"
)

var _ profiles.Repository = (*ProfileRepository)(nil)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

const profileColumns = `id, email, full_name, number, insta_id, organisation, age, gender, role,
       marketing_consent, terms_accepted, photo_url, created_at, updated_at`

func scanProfile(row pgx.Row) (profiles.Profile, error) {
	var p profiles.Profile
	var insta, org, gender, role, photo *string
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Number, &insta, &org, &p.Age, &gender, &role,
		&p.MarketingConsent, &p.TermsAccepted, &photo, &p.CreatedAt, &p.UpdatedAt)
	p.InstaID = derefString(insta)
	p.Organisation = derefString(org)
	p.Gender = derefString(gender)
	p.Role = derefString(role)
	p.PhotoURL = derefString(photo)
	return p, err
}

func (r *ProfileRepository) Get(ctx context.Context, id string) (*profiles.Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM user_profiles WHERE id = $1`, id))
	if err != nil {
		if isNotFound(err) {
			return nil, profiles.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// Upsert keeps the stored photo and role; those change through their own
// paths.
func (r *ProfileRepository) Upsert(ctx context.Context, p profiles.Profile) (*profiles.Profile, error) {
	saved, err := scanProfile(r.pool.QueryRow(ctx, `
INSERT INTO user_profiles (id, email, full_name, number, insta_id, organisation, age, gender,
                           marketing_consent, terms_accepted)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE
   SET email = EXCLUDED.email,
       full_name = EXCLUDED.full_name,
       number = EXCLUDED.number,
       insta_id = EXCLUDED.insta_id,
       organisation = EXCLUDED.organisation,
       age = EXCLUDED.age,
       gender = EXCLUDED.gender,
       marketing_consent = EXCLUDED.marketing_consent,
       terms_accepted = EXCLUDED.terms_accepted,
       updated_at = now()
RETURNING `+profileColumns,
		p.ID, p.Email, p.FullName, p.Number, nullString(p.InstaID), nullString(p.Organisation), p.Age,
		nullString(p.Gender), p.MarketingConsent, p.TermsAccepted))
	if err != nil {
		if pgCode(err) == pgInvalidText {
			return nil, fmt.Errorf("%w: malformed user id", profiles.ErrInvalidProfile)
		}
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return &saved, nil
}

func (r *ProfileRepository) SetPhotoURL(ctx context.Context, id string, url string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE user_profiles SET photo_url = $2, updated_at = now() WHERE id = $1`, id, url)
	if err != nil {
		if isNotFound(err) {
			return profiles.ErrNotFound
		}
		return fmt.Errorf("set photo url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return profiles.ErrNotFound
	}
	return nil
}
