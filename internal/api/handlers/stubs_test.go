package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sbms-academy/server/internal/api/middleware"
	"github.com/sbms-academy/server/internal/api/problem"
	"github.com/sbms-academy/server/internal/auth"
	"github.com/sbms-academy/server/internal/domain/events"
	"github.com/sbms-academy/server/internal/domain/leads"
	"github.com/sbms-academy/server/internal/domain/profiles"
	"github.com/sbms-academy/server/internal/domain/registrations"
	"github.com/sbms-academy/server/internal/domain/uploads"
	"github.com/sbms-academy/server/internal/export"
	"github.com/stretchr/testify/require"
)

const testEnv = "test"

var errBoom = errors.New("boom")

var (
	visitor = auth.Identity{ID: "user-1", Email: "sana@example.com"}
	staff   = auth.Role{IsEmployee: true, EmployeeID: "emp-1"}
)

func asCaller(req *http.Request, identity auth.Identity, role auth.Role) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), identity, role))
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) problem.ProblemDetails {
	t.Helper()
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p problem.ProblemDetails
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	return p
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

type stubRegistrations struct {
	listFilter registrations.QueryFilter
	list       []registrations.Registration
	listErr    error

	reg    *registrations.Registration
	getErr error

	registerInput  registrations.RegisterInput
	registerResult registrations.RegisterResult
	registerErr    error

	qrID     string
	qrResult registrations.QRResult
	qrErr    error
}

func (s *stubRegistrations) List(ctx context.Context, filter registrations.QueryFilter) ([]registrations.Registration, error) {
	s.listFilter = filter
	return s.list, s.listErr
}

func (s *stubRegistrations) Get(ctx context.Context, id string, identity auth.Identity, role auth.Role) (*registrations.Registration, error) {
	return s.reg, s.getErr
}

func (s *stubRegistrations) Register(ctx context.Context, identity auth.Identity, input registrations.RegisterInput) (registrations.RegisterResult, error) {
	s.registerInput = input
	return s.registerResult, s.registerErr
}

func (s *stubRegistrations) GenerateQRCode(ctx context.Context, registrationID string) (registrations.QRResult, error) {
	s.qrID = registrationID
	return s.qrResult, s.qrErr
}

type stubProfiles struct {
	profile *profiles.Profile
	err     error
	saved   profiles.SaveInput
}

func (s *stubProfiles) Get(ctx context.Context, identity auth.Identity) (*profiles.Profile, error) {
	return s.profile, s.err
}

func (s *stubProfiles) Save(ctx context.Context, identity auth.Identity, input profiles.SaveInput) (*profiles.Profile, error) {
	s.saved = input
	return s.profile, s.err
}

type stubPhotos struct {
	got    uploads.Input
	result uploads.Result
	err    error
}

func (s *stubPhotos) Upload(ctx context.Context, identity auth.Identity, in uploads.Input) (uploads.Result, error) {
	s.got = in
	return s.result, s.err
}

type stubImages struct {
	folder string
	url    string
	err    error
}

func (s *stubImages) UploadBase64(ctx context.Context, encoded string, folder string) (string, error) {
	s.folder = folder
	return s.url, s.err
}

type stubEvents struct {
	includeSessions bool
	list            []events.Event
	sessions        []events.Session
	sessionsFor     string
	saveResult      events.SaveResult
	err             error
}

func (s *stubEvents) List(ctx context.Context, includeSessions bool) ([]events.Event, error) {
	s.includeSessions = includeSessions
	return s.list, s.err
}

func (s *stubEvents) Sessions(ctx context.Context, eventID string) ([]events.Session, error) {
	s.sessionsFor = eventID
	return s.sessions, s.err
}

func (s *stubEvents) Save(ctx context.Context, input events.SaveInput) (events.SaveResult, error) {
	return s.saveResult, s.err
}

type stubLeads struct {
	employeeID  string
	lead        *leads.Lead
	interaction *leads.Interaction
	list        []leads.Lead
	filter      leads.ListFilter
	employees   []leads.Employee
	err         error
}

func (s *stubLeads) Create(ctx context.Context, employeeID string, input leads.CreateInput) (*leads.Lead, error) {
	s.employeeID = employeeID
	return s.lead, s.err
}

func (s *stubLeads) AddInteraction(ctx context.Context, employeeID string, input leads.InteractionInput) (*leads.Interaction, error) {
	s.employeeID = employeeID
	return s.interaction, s.err
}

func (s *stubLeads) List(ctx context.Context, filter leads.ListFilter) ([]leads.Lead, error) {
	s.filter = filter
	return s.list, s.err
}

func (s *stubLeads) Employees(ctx context.Context) ([]leads.Employee, error) {
	return s.employees, s.err
}

type stubExportSource struct {
	filter registrations.ExportFilter
	regs   []registrations.Registration
	assets []registrations.Asset
	err    error
}

func (s *stubExportSource) ListForExport(ctx context.Context, filter registrations.ExportFilter) ([]registrations.Registration, error) {
	s.filter = filter
	return s.regs, s.err
}

func (s *stubExportSource) ListAssets(ctx context.Context, sessionID string) ([]registrations.Asset, error) {
	return s.assets, s.err
}

type mapFetcher map[string]export.File

func (m mapFetcher) Fetch(ctx context.Context, url string) (export.File, error) {
	if f, ok := m[url]; ok {
		return f, nil
	}
	return export.File{}, context.DeadlineExceeded
}
