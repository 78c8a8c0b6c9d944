package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sbms-academy/server/internal/auth"
	"github.com/sbms-academy/server/internal/domain/leads"
)

var (
	_ leads.Repository    = (*LeadRepository)(nil)
	_ auth.EmployeeLookup = (*EmployeeRepository)(nil)
)

type LeadRepository struct {
	pool *pgxpool.Pool
}

const leadColumns = `l.id, l.name, l.number, l.insta_id, l.source, l.created_at, l.updated_at`

const interactionColumns = `i.id, i.lead_id, i.interaction_type, i.status, i.contacted_by,
       COALESCE(emp.full_name, ''), COALESCE(emp.role, ''), i.notes, i.follow_up_at, i.created_at`

func scanLead(row pgx.Row) (leads.Lead, error) {
	var lead leads.Lead
	var name, insta, source *string
	err := row.Scan(&lead.ID, &name, &lead.Number, &insta, &source, &lead.CreatedAt, &lead.UpdatedAt)
	lead.Name = derefString(name)
	lead.InstaID = derefString(insta)
	lead.Source = derefString(source)
	lead.Interactions = []leads.Interaction{}
	return lead, err
}

func scanInteraction(row pgx.Row) (leads.Interaction, error) {
	var in leads.Interaction
	var contactedBy *string
	err := row.Scan(&in.ID, &in.LeadID, &in.Type, &in.Status, &contactedBy,
		&in.ContactedByName, &in.ContactedByRole, &in.Notes, &in.FollowUpAt, &in.CreatedAt)
	in.ContactedBy = derefString(contactedBy)
	return in, err
}

func (r *LeadRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM leads WHERE number = $1)`, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("check lead number: %w", err)
	}
	return exists, nil
}

func (r *LeadRepository) Create(ctx context.Context, lead leads.Lead) (*leads.Lead, error) {
	created, err := scanLead(r.pool.QueryRow(ctx, `
INSERT INTO leads AS l (name, number, insta_id, source)
VALUES ($1, $2, $3, $4)
RETURNING `+leadColumns,
		nullString(lead.Name), lead.Number, nullString(lead.InstaID), nullString(lead.Source)))
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return nil, leads.ErrDuplicate
		}
		return nil, fmt.Errorf("insert lead: %w", err)
	}
	return &created, nil
}

func (r *LeadRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM leads WHERE id::text = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check lead: %w", err)
	}
	return exists, nil
}

// AddInteraction inserts and reads back in one statement so the contact's
// name comes with the row.
func (r *LeadRepository) AddInteraction(ctx context.Context, interaction leads.Interaction) (*leads.Interaction, error) {
	created, err := scanInteraction(r.pool.QueryRow(ctx, `
WITH i AS (
  INSERT INTO lead_interactions (lead_id, interaction_type, status, contacted_by, notes, follow_up_at)
  VALUES ($1, $2, $3, $4, $5, $6)
  RETURNING *
)
SELECT `+interactionColumns+`
  FROM i
  LEFT JOIN employees emp ON emp.id = i.contacted_by
`, interaction.LeadID, interaction.Type, interaction.Status, nullString(interaction.ContactedBy),
		interaction.Notes, interaction.FollowUpAt))
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation || isNotFound(err) {
			return nil, leads.ErrNotFound
		}
		return nil, fmt.Errorf("insert lead interaction: %w", err)
	}
	return &created, nil
}

func (r *LeadRepository) Touch(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `UPDATE leads SET updated_at = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("touch lead: %w", err)
	}
	return nil
}

// List pages leads by most recent activity, then attaches every interaction
// of the page in a second query.
func (r *LeadRepository) List(ctx context.Context, filter leads.ListFilter) ([]leads.Lead, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+leadColumns+`
  FROM leads l
 WHERE ($1 = '' OR l.source = $1)
 ORDER BY l.updated_at DESC, l.id DESC
 LIMIT $2 OFFSET $3
`, filter.Source, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	items := make([]leads.Lead, 0)
	ids := make([]string, 0)
	index := make(map[string]int)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		index[lead.ID] = len(items)
		ids = append(ids, lead.ID)
		items = append(items, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	if len(items) == 0 {
		return items, nil
	}

	interactionRows, err := r.pool.Query(ctx, `
SELECT `+interactionColumns+`
  FROM lead_interactions i
  LEFT JOIN employees emp ON emp.id = i.contacted_by
 WHERE i.lead_id::text = ANY($1::text[])
 ORDER BY i.created_at DESC, i.id DESC
`, ids)
	if err != nil {
		return nil, fmt.Errorf("list lead interactions: %w", err)
	}
	defer interactionRows.Close()

	for interactionRows.Next() {
		in, err := scanInteraction(interactionRows)
		if err != nil {
			return nil, fmt.Errorf("scan lead interaction: %w", err)
		}
		if i, ok := index[in.LeadID]; ok {
			items[i].Interactions = append(items[i].Interactions, in)
		}
	}
	if err := interactionRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lead interactions: %w", err)
	}
	return items, nil
}

func (r *LeadRepository) ListEmployees(ctx context.Context) ([]leads.Employee, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, full_name, role FROM employees ORDER BY full_name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	employees, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (leads.Employee, error) {
		var e leads.Employee
		err := row.Scan(&e.ID, &e.FullName, &e.Role)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan employees: %w", err)
	}
	return employees, nil
}

// EmployeeRepository answers staff lookups for role resolution.
type EmployeeRepository struct {
	pool *pgxpool.Pool
}

func (r *EmployeeRepository) EmployeeIDByAuthID(ctx context.Context, authID string) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `SELECT id FROM employees WHERE auth_id = $1`, authID).Scan(&id)
	if err != nil {
		if isNotFound(err) {
			return "", auth.ErrEmployeeNotFound
		}
		return "", fmt.Errorf("lookup employee: %w", err)
	}
	return id, nil
}

