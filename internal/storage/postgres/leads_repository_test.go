package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sbms-academy/server/internal/auth"
	"github.com/sbms-academy/server/internal/domain/leads"
	"github.com/stretchr/testify/require"
)

func TestLeadRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	pool, _ := setupPostgres(t)
	repo := &LeadRepository{pool: pool}
	asha := insertEmployee(t, ctx, pool, uuid.NewString(), "Asha", "counsellor")

	first, err := repo.Create(ctx, leads.Lead{Number: "9876543210", Source: "instagram"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, leads.Lead{Name: "Meera", Number: "9123456780", Source: "walk-in"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, leads.Lead{Number: "9876543210"})
	require.ErrorIs(t, err, leads.ErrDuplicate)

	exists, err := repo.ExistsByNumber(ctx, "9876543210")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.Exists(ctx, "not-a-uuid")
	require.NoError(t, err)
	require.False(t, exists)

	followUp := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	in, err := repo.AddInteraction(ctx, leads.Interaction{
		LeadID:      first.ID,
		Type:        "call",
		Status:      "contacted",
		ContactedBy: asha,
		Notes:       "asked about fees",
		FollowUpAt:  &followUp,
	})
	require.NoError(t, err)
	require.Equal(t, "Asha", in.ContactedByName)
	require.Equal(t, "counsellor", in.ContactedByRole)
	require.True(t, followUp.Equal(*in.FollowUpAt))
	require.NoError(t, repo.Touch(ctx, first.ID))

	_, err = repo.AddInteraction(ctx, leads.Interaction{LeadID: uuid.NewString(), Type: "call", Status: "new", Notes: "x"})
	require.ErrorIs(t, err, leads.ErrNotFound)

	all, err := repo.List(ctx, leads.ListFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, first.ID, all[0].ID, "touched lead sorts first")
	require.Len(t, all[0].Interactions, 1)
	require.Empty(t, all[1].Interactions)

	walkIns, err := repo.List(ctx, leads.ListFilter{Source: "walk-in", Limit: 10})
	require.NoError(t, err)
	require.Len(t, walkIns, 1)
	require.Equal(t, second.ID, walkIns[0].ID)

	employees, err := repo.ListEmployees(ctx)
	require.NoError(t, err)
	require.Equal(t, []leads.Employee{{ID: asha, FullName: "Asha", Role: "counsellor"}}, employees)
}

func TestEmployeeLookup(t *testing.T) {
	ctx := context.Background()
	pool, _ := setupPostgres(t)
	repo := &EmployeeRepository{pool: pool}
	authID := uuid.NewString()
	id := insertEmployee(t, ctx, pool, authID, "Asha", "manager")

	got, err := repo.EmployeeIDByAuthID(ctx, authID)
	require.NoError(t, err)
	require.Equal(t, id, got)

	_, err = repo.EmployeeIDByAuthID(ctx, uuid.NewString())
	require.ErrorIs(t, err, auth.ErrEmployeeNotFound)

	role, err := auth.NewRoleResolver(repo).ResolveRole(ctx, auth.Identity{ID: "subject-that-is-not-a-uuid"})
	require.NoError(t, err)
	require.False(t, role.IsEmployee)
}

func TestMigrationVersion(t *testing.T) {
	_, dbURL := setupPostgres(t)
	version, dirty, err := MigrationVersion(dbURL, "")
	require.NoError(t, err)
	require.EqualValues(t, 1, version)
	require.False(t, dirty)
}
