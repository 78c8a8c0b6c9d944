package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sbms-academy/server/internal/validation"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Identity    IdentityConfig
	Admin       AdminConfig
	Media       MediaConfig
	Email       EmailConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Logging     LoggingConfig
	Tracing     TracingConfig
	Environment string
}

type ServerConfig struct {
	Host            string
	Port            int
	BaseURL         string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
	MigrationsPath string
}

// IdentityConfig describes how end-user access tokens issued by the hosted
// identity service are verified.
type IdentityConfig struct {
	JWTSecret  string
	Issuer     string
	CookieName string
}

// AdminConfig holds the shared admin password and the session it unlocks.
// Password may be a bcrypt hash ("$2a$...") or plain text.
type AdminConfig struct {
	Password      string
	SessionSecret string
	SessionExpiry time.Duration
	CSRFKey       string
}

type MediaConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Enabled reports whether Cloudinary credentials are present.
func (m MediaConfig) Enabled() bool {
	return m.CloudName != "" && m.APIKey != "" && m.APISecret != ""
}

type EmailConfig struct {
	Enabled      bool
	From         string
	ResendAPIKey string
}

type RateLimitConfig struct {
	PublicPerMinute   int
	AdminPerMinute    int
	LoginPer15Minutes int
	TrustedProxyCIDRs []string
}

type CORSConfig struct {
	AllowAllOrigins bool
	AllowedOrigins  []string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type TracingConfig struct {
	Enabled      bool
	ServiceName  string
	Exporter     string
	OTLPEndpoint string
	SampleRate   float64
}

// Load reads configuration from the environment only.
func Load() (Config, error) {
	return LoadFile("")
}

// LoadFile reads configuration from the environment, falling back to the
// flat KEY: value YAML file at path for anything the environment leaves unset.
func LoadFile(path string) (Config, error) {
	src := source{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &src.file); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	env := src.getEnv("ENVIRONMENT", "development")
	cfg := Config{
		Server: ServerConfig{
			Host:            src.getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            src.getEnvInt("SERVER_PORT", 8080),
			BaseURL:         src.getEnv("SERVER_BASE_URL", "http://localhost:8080"),
			ShutdownTimeout: time.Duration(src.getEnvInt("SERVER_SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Database: DatabaseConfig{
			URL:            src.getEnv("DATABASE_URL", ""),
			MaxConnections: src.getEnvInt("DATABASE_MAX_CONNECTIONS", 10),
			MigrationsPath: src.getEnv("DATABASE_MIGRATIONS_PATH", ""),
		},
		Identity: IdentityConfig{
			JWTSecret:  src.getEnv("IDENTITY_JWT_SECRET", ""),
			Issuer:     src.getEnv("IDENTITY_JWT_ISSUER", ""),
			CookieName: src.getEnv("IDENTITY_COOKIE_NAME", "sb-access-token"),
		},
		Admin: AdminConfig{
			Password:      src.getEnv("ADMIN_PASSWORD", ""),
			SessionSecret: src.getEnv("ADMIN_SESSION_SECRET", ""),
			SessionExpiry: time.Duration(src.getEnvInt("ADMIN_SESSION_EXPIRY_HOURS", 12)) * time.Hour,
			CSRFKey:       src.getEnv("CSRF_KEY", ""),
		},
		Media: MediaConfig{
			CloudName: src.getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    src.getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: src.getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    src.getEnv("CLOUDINARY_FOLDER", "sbms"),
		},
		Email: EmailConfig{
			Enabled:      src.getEnvBool("EMAIL_ENABLED", false),
			From:         src.getEnv("EMAIL_FROM", "SBMS Academy <noreply@sbms.academy>"),
			ResendAPIKey: src.getEnv("RESEND_API_KEY", ""),
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute:   src.getEnvInt("RATE_LIMIT_PUBLIC", 120),
			AdminPerMinute:    src.getEnvInt("RATE_LIMIT_ADMIN", 0),
			LoginPer15Minutes: src.getEnvInt("RATE_LIMIT_LOGIN", 5),
			TrustedProxyCIDRs: src.getEnvList("TRUSTED_PROXY_CIDRS"),
		},
		CORS: CORSConfig{
			AllowAllOrigins: env == "development" || env == "test",
			AllowedOrigins:  src.getEnvList("CORS_ALLOWED_ORIGINS"),
		},
		Logging: LoggingConfig{
			Level:  src.getEnv("LOG_LEVEL", "info"),
			Format: src.getEnv("LOG_FORMAT", "json"),
		},
		Tracing: TracingConfig{
			Enabled:      src.getEnvBool("TRACING_ENABLED", false),
			ServiceName:  src.getEnv("TRACING_SERVICE_NAME", "sbms-server"),
			Exporter:     src.getEnv("TRACING_EXPORTER", "stdout"),
			OTLPEndpoint: src.getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:   src.getEnvFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		Environment: env,
	}

	if cfg.Admin.SessionSecret == "" {
		cfg.Admin.SessionSecret = cfg.Identity.JWTSecret
	}
	if cfg.Admin.CSRFKey == "" {
		cfg.Admin.CSRFKey = cfg.Admin.SessionSecret
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Identity.JWTSecret == "" {
		return Config{}, fmt.Errorf("IDENTITY_JWT_SECRET is required")
	}
	if len(cfg.Admin.CSRFKey) < 32 && cfg.Environment == "production" {
		return Config{}, fmt.Errorf("CSRF_KEY must be at least 32 bytes in production")
	}
	if err := validation.ValidateBaseURL(cfg.Server.BaseURL, "SERVER_BASE_URL", cfg.IsProduction()); err != nil {
		return Config{}, err
	}
	if err := validation.ValidateOrigins(cfg.CORS.AllowedOrigins, "CORS_ALLOWED_ORIGINS"); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsProduction reports whether cookies should be marked Secure and HSTS sent.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

type source struct {
	file map[string]string
}

func (s source) lookup(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return s.file[key]
}

func (s source) getEnv(key, fallback string) string {
	if value := s.lookup(key); value != "" {
		return value
	}
	return fallback
}

func (s source) getEnvInt(key string, fallback int) int {
	value := s.lookup(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (s source) getEnvFloat(key string, fallback float64) float64 {
	value := s.lookup(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func (s source) getEnvBool(key string, fallback bool) bool {
	value := s.lookup(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (s source) getEnvList(key string) []string {
	value := s.lookup(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
