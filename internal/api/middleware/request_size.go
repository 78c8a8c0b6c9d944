package middleware

import "net/http"

const (
	// DefaultMaxBodySize covers every JSON endpoint.
	DefaultMaxBodySize int64 = 1 << 20

	// PhotoUploadMaxBodySize leaves room above the 5 MiB image limit so the
	// upload pipeline, not the body reader, reports an oversized photo.
	PhotoUploadMaxBodySize int64 = 6 << 20

	// AdminUploadMaxBodySize fits a 5 MiB image once base64 encoded.
	AdminUploadMaxBodySize int64 = 8 << 20
)

// RequestSize caps the request body with http.MaxBytesReader. Reads past the
// cap fail with *http.MaxBytesError, which handlers map to 413.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
