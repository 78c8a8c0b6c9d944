package postgres

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	sharedOnce    sync.Once
	sharedInitErr error
	sharedPool    *pgxpool.Pool
	sharedDBURL   string
)

const sharedContainerName = "sbms-storage-db"

func TestMain(m *testing.M) {
	code := m.Run()
	if sharedPool != nil {
		sharedPool.Close()
	}
	os.Exit(code)
}

// setupPostgres returns a migrated, empty database shared by the package.
func setupPostgres(t *testing.T) (*pgxpool.Pool, string) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	sharedOnce.Do(initShared)
	require.NoError(t, sharedInitErr)
	resetDatabase(t, sharedPool)
	return sharedPool, sharedDBURL
}

func initShared() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("sbms"),
		postgres.WithUsername("sbms"),
		postgres.WithPassword("sbms_dev"),
		testcontainers.WithReuseByName(sharedContainerName),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		sharedInitErr = err
		return
	}

	dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		sharedInitErr = err
		return
	}
	sharedDBURL = dbURL

	if err := MigrateUp(dbURL, ""); err != nil {
		sharedInitErr = err
		return
	}

	sharedPool, sharedInitErr = pgxpool.New(ctx, dbURL)
}

func resetDatabase(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := pool.Query(ctx, `
SELECT tablename
  FROM pg_tables
 WHERE schemaname = 'public'
   AND tablename <> 'schema_migrations'
 ORDER BY tablename`)
	require.NoError(t, err)

	var tables []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables = append(tables, `"public"."`+strings.ReplaceAll(name, `"`, `""`)+`"`)
	}
	rows.Close()
	require.NoError(t, rows.Err())
	if len(tables) == 0 {
		return
	}

	_, err = pool.Exec(ctx, "TRUNCATE TABLE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}

func insertProfile(t *testing.T, ctx context.Context, pool *pgxpool.Pool, name, organisation string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(ctx, `
INSERT INTO user_profiles (id, email, full_name, number, organisation, terms_accepted)
VALUES ($1, $2, $3, '9876543210', $4, true)`,
		id, strings.ToLower(strings.ReplaceAll(name, " ", "."))+"@example.com", name, organisation)
	require.NoError(t, err)
	return id
}

func insertEmployee(t *testing.T, ctx context.Context, pool *pgxpool.Pool, authID, name, role string) string {
	t.Helper()
	var id string
	err := pool.QueryRow(ctx,
		`INSERT INTO employees (auth_id, full_name, role) VALUES ($1, $2, $3) RETURNING id`,
		authID, name, role,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func insertIDCardTemplate(t *testing.T, ctx context.Context, pool *pgxpool.Pool) string {
	t.Helper()
	var id string
	err := pool.QueryRow(ctx,
		`INSERT INTO id_card_details (name, template_url) VALUES ('Default', 'https://cdn.example/id.png') RETURNING id`,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func float(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }
