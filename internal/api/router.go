package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/sbms-academy/server/internal/api/handlers"
	"github.com/sbms-academy/server/internal/api/middleware"
	"github.com/sbms-academy/server/internal/audit"
	"github.com/sbms-academy/server/internal/auth"
	"github.com/sbms-academy/server/internal/config"
	"github.com/sbms-academy/server/internal/export"
	"github.com/sbms-academy/server/internal/metrics"
)

// AdminSessions issues and validates the admin session cookie.
type AdminSessions interface {
	Issue() (string, error)
	Expiry() time.Duration
	Validate(token string) (*auth.SessionClaims, error)
}

// Dependencies carries everything the router wires into handlers. Services
// are interfaces so tests can route through stubs.
type Dependencies struct {
	Config config.Config
	Logger zerolog.Logger

	Authenticator middleware.Authenticator
	Roles         middleware.RoleResolver
	AdminSecret   handlers.PasswordChecker
	AdminSessions AdminSessions
	CSRFKey       []byte

	Registrations handlers.RegistrationService
	Profiles      handlers.ProfileService
	Photos        handlers.PhotoUploader
	Images        handlers.ImageUploader
	Events        handlers.EventService
	Leads         handlers.LeadService
	Exports       handlers.ExportSource
	Fetcher       export.Fetcher
	Health        *handlers.HealthChecker

	Version   string
	GitCommit string
	BuildDate string
}

type chainFunc func(http.Handler) http.Handler

func chain(h http.Handler, mws ...chainFunc) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// NewRouter registers every route and wraps the mux in the shared request
// pipeline: correlation id, tracing, metrics, access log, security headers
// and CORS. Rate limiting runs per route so each route's tier applies.
func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	env := cfg.Environment
	secure := cfg.IsProduction()

	registrations := handlers.NewRegistrationsHandler(deps.Registrations, env)
	profiles := handlers.NewProfilesHandler(deps.Profiles, deps.Photos, env)
	uploads := handlers.NewUploadsHandler(deps.Images, env)
	eventsHandler := handlers.NewEventsHandler(deps.Events, env)
	leadsHandler := handlers.NewLeadsHandler(deps.Leads, env)
	exports := handlers.NewExportHandler(deps.Exports, deps.Fetcher, env)
	adminAuth := handlers.NewAdminAuthHandler(deps.AdminSecret, deps.AdminSessions, secure, env)

	limit := middleware.RateLimit(cfg.RateLimit, env)
	jsonBody := middleware.RequestSize(middleware.DefaultMaxBodySize)

	public := func(h http.HandlerFunc) http.Handler {
		return chain(h, limit)
	}
	user := func(h http.HandlerFunc, size chainFunc) http.Handler {
		return chain(h, limit, size, middleware.RequireIdentity(deps.Authenticator, deps.Roles, env))
	}
	employee := func(h http.HandlerFunc) http.Handler {
		return chain(h, limit, jsonBody,
			middleware.RequireIdentity(deps.Authenticator, deps.Roles, env),
			middleware.RequireEmployee(env))
	}

	trail := audit.NewLogger(deps.Logger)
	csrf := middleware.CSRFProtection(deps.CSRFKey, secure, env)
	admin := func(action string, h http.HandlerFunc, size chainFunc) http.Handler {
		return chain(h,
			middleware.WithRateLimitTierHandler(middleware.TierAdmin), limit,
			size,
			middleware.AdminSession(deps.AdminSessions, env),
			csrf,
			trail.Middleware(action))
	}
	login := chain(http.HandlerFunc(adminAuth.Login),
		middleware.WithRateLimitTierHandler(middleware.TierLogin), limit,
		trail.Middleware("admin.login"), jsonBody)

	mux := http.NewServeMux()

	mux.Handle("GET /healthz", handlers.Healthz())
	if deps.Health != nil {
		mux.Handle("GET /readyz", deps.Health.Readyz())
	}
	mux.Handle("GET /version", VersionHandler(deps.Version, deps.GitCommit, deps.BuildDate))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.Handle("GET /api/events", public(eventsHandler.List))
	mux.Handle("GET /api/events/{id}/sessions", public(eventsHandler.Sessions))

	mux.Handle("GET /api/auth/profile", user(profiles.Get, jsonBody))
	mux.Handle("POST /api/auth/profile", user(profiles.Save, jsonBody))
	mux.Handle("POST /api/upload/photo", user(profiles.UploadPhoto, middleware.RequestSize(middleware.PhotoUploadMaxBodySize)))
	mux.Handle("GET /api/registrations", user(registrations.List, jsonBody))
	mux.Handle("GET /api/registration/{id}", user(registrations.Get, jsonBody))
	mux.Handle("POST /api/register", user(registrations.Register, jsonBody))

	mux.Handle("POST /api/qrcode/generate", employee(registrations.GenerateQRCode))
	mux.Handle("GET /api/leads", employee(leadsHandler.List))
	mux.Handle("POST /api/leads", employee(leadsHandler.Create))
	mux.Handle("POST /api/lead-interactions", employee(leadsHandler.AddInteraction))
	mux.Handle("GET /api/employees", employee(leadsHandler.Employees))

	mux.Handle("POST /api/admin/auth", login)
	mux.Handle("POST /admin/auth", login)
	mux.Handle("GET /api/admin/session", admin("admin.session", adminAuth.Session, jsonBody))
	mux.Handle("POST /api/admin/logout", admin("admin.logout", adminAuth.Logout, jsonBody))
	mux.Handle("PUT /api/admin/events", admin("admin.events.save", eventsHandler.Save, jsonBody))
	mux.Handle("POST /api/upload_image", admin("admin.upload_image", uploads.UploadImage, middleware.RequestSize(middleware.AdminUploadMaxBodySize)))
	mux.Handle("GET /api/admin/export/registrations.xlsx", admin("admin.export.registrations", exports.Registrations, jsonBody))
	mux.Handle("GET /api/admin/export/assets.zip", admin("admin.export.assets", exports.Assets, jsonBody))

	return chain(mux,
		middleware.CorrelationID(deps.Logger),
		middleware.Tracing(mux),
		metrics.HTTPMiddleware(mux),
		middleware.RequestLogging(deps.Logger),
		middleware.SecurityHeaders(secure),
		middleware.CORS(cfg.CORS, deps.Logger),
	)
}
