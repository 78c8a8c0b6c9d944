package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sbms-academy/server/internal/auth"
	"github.com/sbms-academy/server/internal/domain/events"
	"github.com/sbms-academy/server/internal/domain/leads"
	"github.com/sbms-academy/server/internal/domain/profiles"
	"github.com/sbms-academy/server/internal/domain/registrations"
	"github.com/sbms-academy/server/internal/storage"
)

var _ storage.Repository = (*Repository)(nil)

// Repository implements storage.Repository with a PostgreSQL backend.
type Repository struct {
	pool *pgxpool.Pool

	events        *EventRepository
	registrations *RegistrationRepository
	profiles      *ProfileRepository
	leads         *LeadRepository
	employees     *EmployeeRepository
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	return &Repository{
		pool:          pool,
		events:        &EventRepository{pool: pool},
		registrations: &RegistrationRepository{pool: pool},
		profiles:      &ProfileRepository{pool: pool},
		leads:         &LeadRepository{pool: pool},
		employees:     &EmployeeRepository{pool: pool},
	}, nil
}

func (r *Repository) Events() events.Repository               { return r.events }
func (r *Repository) Registrations() registrations.Repository { return r.registrations }
func (r *Repository) Profiles() profiles.Repository           { return r.profiles }
func (r *Repository) Leads() leads.Repository                 { return r.leads }
func (r *Repository) Employees() auth.EmployeeLookup          { return r.employees }

type queryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// withTx runs fn inside a transaction, rolling back when fn fails.
func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("rollback after error %v: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidText         = "22P02"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isNotFound treats a malformed uuid the same as a missing row: neither can
// match anything.
func isNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || pgCode(err) == pgInvalidText
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func nullString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
