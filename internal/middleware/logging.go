package middleware

import (
	"log"
	"net/http"
	"time"
)

// responseWriter captures the status code and body size for the access log
// and the request metrics.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// LoggingMiddleware writes one access-log line per request, tagged with the
// authenticated tenant when present.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		tenant := GetTenantFromContext(r.Context())
		if tenant == "" {
			tenant = "-"
		}
		log.Printf(
			"method=%s path=%s tenant=%s status=%d duration=%s bytes=%d ip=%s",
			r.Method,
			r.URL.Path,
			tenant,
			wrapped.statusCode,
			time.Since(start),
			wrapped.written,
			r.RemoteAddr,
		)
	})
}
