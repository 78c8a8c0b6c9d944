package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

type stubRow struct {
	values []any
	err    error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int:
			*p = r.values[i].(int)
		case *int64:
			*p = r.values[i].(int64)
		case *bool:
			*p = r.values[i].(bool)
		}
	}
	return nil
}

// stubQuerier answers by matching a fragment of the SQL text.
type stubQuerier map[string]stubRow

func (q stubQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	for fragment, row := range q {
		if strings.Contains(sql, fragment) {
			return row
		}
	}
	return stubRow{err: errors.New("unexpected query")}
}

func healthyDB() stubQuerier {
	return stubQuerier{
		"SELECT 1":          {values: []any{1}},
		"schema_migrations": {values: []any{int64(1), false}},
		"river_job":         {values: []any{int64(3)}},
	}
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	Healthz().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name       string
		db         Querier
		jobs       bool
		wantStatus int
		wantState  string
	}{
		{"all healthy", healthyDB(), true, http.StatusOK, "healthy"},
		{"jobs disabled", healthyDB(), false, http.StatusOK, "degraded"},
		{"database down", stubQuerier{
			"SELECT 1":          {err: errors.New("dial tcp: connection refused")},
			"schema_migrations": {values: []any{int64(1), false}},
			"river_job":         {values: []any{int64(0)}},
		}, true, http.StatusServiceUnavailable, "unhealthy"},
		{"dirty migration", stubQuerier{
			"SELECT 1":          {values: []any{1}},
			"schema_migrations": {values: []any{int64(1), true}},
			"river_job":         {values: []any{int64(0)}},
		}, true, http.StatusServiceUnavailable, "unhealthy"},
		{"no pool", nil, false, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewHealthChecker(tt.db, tt.jobs, "1.0.0", "abc123")
			rec := httptest.NewRecorder()
			checker.Readyz().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			var resp HealthCheck
			decodeBody(t, rec, &resp)
			require.Equal(t, tt.wantState, resp.Status)
			require.Equal(t, "1.0.0", resp.Version)
			require.Len(t, resp.Checks, 3)
		})
	}
}
