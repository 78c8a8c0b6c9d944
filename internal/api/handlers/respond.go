package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sbms-academy/server/internal/api/middleware"
	"github.com/sbms-academy/server/internal/api/problem"
	"github.com/sbms-academy/server/internal/auth"
	"github.com/sbms-academy/server/internal/domain/events"
	"github.com/sbms-academy/server/internal/domain/leads"
	"github.com/sbms-academy/server/internal/domain/profiles"
	"github.com/sbms-academy/server/internal/domain/registrations"
	"github.com/sbms-academy/server/internal/domain/uploads"
	"github.com/sbms-academy/server/internal/media"
)

var errBadJSON = errors.New("request body is not valid JSON")

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON reads a single JSON document into dst. Oversized bodies keep
// their *http.MaxBytesError so writeError can answer 413.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadJSON)
		}
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return nil
}

type errorMapping struct {
	target error
	status int
	typ    string
	title  string
}

// errorMappings is checked in order; the first errors.Is match wins.
var errorMappings = []errorMapping{
	{errBadJSON, http.StatusBadRequest, problem.TypeValidation, "Invalid request"},
	{uploads.ErrTooLarge, http.StatusRequestEntityTooLarge, problem.TypePayloadLarge, "File too large"},
	{uploads.ErrInvalidType, http.StatusBadRequest, problem.TypeValidation, "Invalid file type"},
	{uploads.ErrEmpty, http.StatusBadRequest, problem.TypeValidation, "No file provided"},
	{uploads.ErrBadEncoding, http.StatusBadRequest, problem.TypeValidation, "Invalid image"},
	{uploads.ErrBadFolder, http.StatusBadRequest, problem.TypeValidation, "Invalid folder"},
	{registrations.ErrInvalidInput, http.StatusBadRequest, problem.TypeValidation, "Invalid registration"},
	{registrations.ErrProfileRequired, http.StatusBadRequest, problem.TypeValidation, "Profile required"},
	{registrations.ErrAlreadyRegistered, http.StatusBadRequest, problem.TypeConflict, "Already registered"},
	{registrations.ErrForbidden, http.StatusForbidden, problem.TypeForbidden, "Forbidden"},
	{registrations.ErrNotFound, http.StatusNotFound, problem.TypeNotFound, "Registration not found"},
	{registrations.ErrEventNotFound, http.StatusNotFound, problem.TypeNotFound, "Event not found"},
	{registrations.ErrSessionNotFound, http.StatusNotFound, problem.TypeNotFound, "Session not found"},
	{events.ErrInvalidEvent, http.StatusBadRequest, problem.TypeValidation, "Invalid event"},
	{events.ErrNotFound, http.StatusNotFound, problem.TypeNotFound, "Event not found"},
	{events.ErrSessionNotFound, http.StatusNotFound, problem.TypeNotFound, "Session not found"},
	{profiles.ErrInvalidProfile, http.StatusBadRequest, problem.TypeValidation, "Invalid profile"},
	{profiles.ErrNotFound, http.StatusNotFound, problem.TypeNotFound, "Profile not found"},
	{leads.ErrInvalidLead, http.StatusBadRequest, problem.TypeValidation, "Invalid lead"},
	{leads.ErrInvalidAction, http.StatusBadRequest, problem.TypeValidation, "Invalid interaction"},
	{leads.ErrDuplicate, http.StatusBadRequest, problem.TypeConflict, "Duplicate lead"},
	{leads.ErrNotFound, http.StatusNotFound, problem.TypeNotFound, "Lead not found"},
	{media.ErrUpstream, http.StatusBadGateway, problem.TypeUpstream, "Media storage failed"},
	{media.ErrNotConfigured, http.StatusServiceUnavailable, problem.TypeServerError, "Media storage unavailable"},
}

// writeError maps domain errors to problem responses. Client errors carry
// the domain message as detail; anything unrecognised is a 500 whose detail
// is hidden outside development.
func writeError(w http.ResponseWriter, r *http.Request, err error, env string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypePayloadLarge, "Request body too large", err, env,
			problem.WithDetail(fmt.Sprintf("request body must not exceed %d bytes", tooLarge.Limit)))
		return
	}

	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		var opts []problem.Option
		if m.status < http.StatusInternalServerError {
			opts = append(opts, problem.WithDetail(err.Error()))
		}
		problem.Write(w, r, m.status, m.typ, m.title, err, env, opts...)
		return
	}

	problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Internal server error", err, env)
}

func badRequest(w http.ResponseWriter, r *http.Request, detail string, env string) {
	problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", errors.New(detail), env,
		problem.WithDetail(detail))
}

// caller returns the identity and role placed on the context by
// middleware.RequireIdentity.
func caller(r *http.Request) (auth.Identity, auth.Role, bool) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok || identity.ID == "" {
		return auth.Identity{}, auth.Role{}, false
	}
	role, _ := middleware.RoleFrom(r.Context())
	return identity, role, true
}

func unauthorized(w http.ResponseWriter, r *http.Request, env string) {
	problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Unauthorized", auth.ErrUnauthorized, env,
		problem.WithDetail("Sign in to continue"))
}
