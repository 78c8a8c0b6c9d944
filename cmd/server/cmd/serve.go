package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/rivertype"
	"github.com/rs/zerolog"
	"github.com/sbms-academy/server/internal/api"
	"github.com/sbms-academy/server/internal/api/handlers"
	"github.com/sbms-academy/server/internal/auth"
	"github.com/sbms-academy/server/internal/config"
	"github.com/sbms-academy/server/internal/domain/events"
	"github.com/sbms-academy/server/internal/domain/leads"
	"github.com/sbms-academy/server/internal/domain/profiles"
	"github.com/sbms-academy/server/internal/domain/registrations"
	"github.com/sbms-academy/server/internal/domain/uploads"
	"github.com/sbms-academy/server/internal/email"
	"github.com/sbms-academy/server/internal/export"
	"github.com/sbms-academy/server/internal/jobs"
	"github.com/sbms-academy/server/internal/media"
	"github.com/sbms-academy/server/internal/metrics"
	"github.com/sbms-academy/server/internal/storage/postgres"
	"github.com/sbms-academy/server/internal/telemetry"
	"github.com/spf13/cobra"
)

var (
	serverHost    string
	serverPort    int
	skipMigration bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (and --config if given)
- Apply pending database migrations unless --skip-migrate is set
- Start the background workers that send confirmation emails
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug --log-format console`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
	serveCmd.Flags().BoolVar(&skipMigration, "skip-migrate", false, "do not apply migrations on startup")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", Version).Str("environment", cfg.Environment).Msg("starting sbms server")

	metrics.Init(Version, GitCommit, BuildDate)

	shutdownTracing, err := telemetry.InitTracing(context.Background(), cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("tracing init failed: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	if !skipMigration {
		if err := postgres.MigrateUp(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			return err
		}
		logger.Info().Msg("database schema up to date")
	}

	pool, err := openPool(cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	dbCollector := metrics.NewDBCollector(pool)
	collectorCtx, collectorCancel := context.WithCancel(context.Background())
	defer collectorCancel()
	go dbCollector.Start(collectorCtx, 15*time.Second)

	app, err := buildApp(cfg, pool, logger)
	if err != nil {
		return err
	}

	riverCtx, riverCancel := context.WithCancel(context.Background())
	defer riverCancel()
	if err := app.river.Start(riverCtx); err != nil {
		return fmt.Errorf("river workers failed to start: %w", err)
	}
	logger.Info().Msg("background workers started")
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := app.river.Stop(stopCtx); err != nil {
			logger.Error().Err(err).Msg("river workers shutdown error")
		} else {
			logger.Info().Msg("river workers stopped")
		}
	}()

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           app.handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second, // exports are assembled before the first byte
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	return gracefulShutdown(server, cfg.Server.ShutdownTimeout, logger)
}

func openPool(cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConnections)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return pool, nil
}

type riverLifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type app struct {
	handler http.Handler
	river   riverLifecycle
}

// buildApp wires repositories, services and the job queue into the router.
func buildApp(cfg config.Config, pool *pgxpool.Pool, logger zerolog.Logger) (*app, error) {
	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return nil, err
	}

	store, err := newMediaStore(cfg.Media, logger)
	if err != nil {
		return nil, err
	}

	mailer, err := email.NewService(cfg.Email, logger)
	if err != nil {
		return nil, fmt.Errorf("email service: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := jobs.Migrate(ctx, pool); err != nil {
		return nil, err
	}

	workers := jobs.NewWorkers(jobs.RegistrationConfirmationWorker{
		Registrations: repo.Registrations(),
		Mailer:        mailer,
		BaseURL:       cfg.Server.BaseURL,
		Logger:        logger,
	})
	jobLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	riverClient, err := jobs.NewClient(pool, workers, jobLogger,
		[]rivertype.Hook{metrics.NewRiverMetricsHook()},
		func(ctx context.Context, job *rivertype.JobRow, err error) {
			logger.Error().Err(err).Str("kind", job.Kind).Int64("job_id", job.ID).Int("attempt", job.Attempt).Msg("background job failed")
		})
	if err != nil {
		return nil, err
	}

	eventService := events.NewService(repo.Events())
	profileService := profiles.NewService(repo.Profiles())
	registrationService := registrations.NewService(
		repo.Registrations(), eventService, profileService, store, jobs.NewRiverNotifier(riverClient), logger)
	pipeline := uploads.NewPipeline(store, profileService, logger)

	sessionKey, err := auth.DeriveSessionKey([]byte(cfg.Admin.SessionSecret))
	if err != nil {
		return nil, fmt.Errorf("derive admin session key: %w", err)
	}
	csrfKey, err := auth.DeriveCSRFKey([]byte(cfg.Admin.CSRFKey))
	if err != nil {
		return nil, fmt.Errorf("derive csrf key: %w", err)
	}

	handler := api.NewRouter(api.Dependencies{
		Config:        cfg,
		Logger:        logger,
		Authenticator: auth.NewAuthenticator(cfg.Identity.JWTSecret, cfg.Identity.Issuer, cfg.Identity.CookieName),
		Roles:         auth.NewRoleResolver(repo.Employees()),
		AdminSecret:   auth.NewAdminSecret(cfg.Admin.Password),
		AdminSessions: auth.NewSessionManager(string(sessionKey), cfg.Admin.SessionExpiry, "sbms-admin"),
		CSRFKey:       csrfKey,
		Registrations: registrationService,
		Profiles:      profileService,
		Photos:        pipeline,
		Images:        pipeline,
		Events:        eventService,
		Leads:         leads.NewService(repo.Leads(), logger),
		Exports:       registrationService,
		Fetcher:       export.NewHTTPFetcher(nil),
		Health:        handlers.NewHealthChecker(pool, true, Version, GitCommit),
		Version:       Version,
		GitCommit:     GitCommit,
		BuildDate:     BuildDate,
	})

	return &app{handler: handler, river: riverClient}, nil
}

// newMediaStore falls back to media.Disabled so the API keeps serving
// reads when no CDN credentials are configured.
func newMediaStore(cfg config.MediaConfig, logger zerolog.Logger) (media.Store, error) {
	store, err := media.NewCloudinary(cfg, logger)
	if errors.Is(err, media.ErrNotConfigured) {
		logger.Warn().Msg("cloudinary not configured, uploads are disabled")
		return media.Disabled{}, nil
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

func gracefulShutdown(server *http.Server, timeout time.Duration, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutting down")

	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
