// Package internal holds the academy server internals.
//
// The tree is organized by responsibility:
//   - api: HTTP routing, handlers, middleware and problem responses
//   - domain: events, registrations, profiles, uploads and leads
//   - storage: the Postgres repositories and embedded migrations
//   - jobs: River workers for confirmation emails
//   - auth, audit, config, metrics, telemetry: shared infrastructure
//   - email, media, tickets, export, sanitize, validation: adapters and helpers
package internal
