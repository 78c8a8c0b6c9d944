// Package audit records who did what in the admin area. Entries go to the
// application log under an "audit" object so they can be filtered out of
// the regular access log.
package audit

import (
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sbms-academy/server/internal/api/middleware"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Entry is a single audit record.
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`
	Actor      string    `json:"actor"`
	Resource   string    `json:"resource,omitempty"`
	IPAddress  string    `json:"ip_address"`
	Status     string    `json:"status"`
	StatusCode int       `json:"status_code"`
	RequestID  string    `json:"request_id,omitempty"`
}

type Logger struct {
	logger zerolog.Logger
	now    func() time.Time
}

func NewLogger(base zerolog.Logger) *Logger {
	return &Logger{
		logger: base.With().Str("component", "audit").Logger(),
		now:    time.Now,
	}
}

func (l *Logger) Log(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now().UTC()
	}
	ev := l.logger.Info()
	if entry.Status == StatusFailure {
		ev = l.logger.Warn()
	}
	ev.Interface("audit", entry).Msg("audit")
}

// Middleware records one entry per request once the handler returns.
// Responses below 400 count as success.
func (l *Logger) Middleware(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			entry := Entry{
				Action:     action,
				Actor:      actor(r),
				Resource:   r.URL.Path,
				IPAddress:  remoteIP(r),
				Status:     StatusSuccess,
				StatusCode: rec.status,
				RequestID:  middleware.GetRequestID(r.Context()),
			}
			if rec.status >= http.StatusBadRequest {
				entry.Status = StatusFailure
			}
			l.Log(entry)
		})
	}
}

func actor(r *http.Request) string {
	if claims := middleware.AdminClaims(r); claims != nil && claims.Subject != "" {
		return claims.Subject
	}
	return "anonymous"
}

// remoteIP ignores forwarding headers. Only the rate limiter honours
// TRUSTED_PROXY_CIDRS.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.status = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wroteHeader = true
	return s.ResponseWriter.Write(b)
}
