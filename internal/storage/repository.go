package storage

import (
	"github.com/sbms-academy/server/internal/auth"
	"github.com/sbms-academy/server/internal/domain/events"
	"github.com/sbms-academy/server/internal/domain/leads"
	"github.com/sbms-academy/server/internal/domain/profiles"
	"github.com/sbms-academy/server/internal/domain/registrations"
)

// Repository groups data access by domain.
type Repository interface {
	Events() events.Repository
	Registrations() registrations.Repository
	Profiles() profiles.Repository
	Leads() leads.Repository
	Employees() auth.EmployeeLookup
}
