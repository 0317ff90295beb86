package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mvidal/destino/pkg/metrics"
)

// responseWriter captures the status code written by the wrapped handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware records request counts, latencies and error rates for a
// named endpoint.
func MetricsMiddleware(next http.Handler, endpoint string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		status := strconv.Itoa(rw.statusCode)

		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, time.Since(start).Seconds())

		if rw.statusCode >= http.StatusBadRequest {
			errorType := "client_error"
			if rw.statusCode >= http.StatusInternalServerError {
				errorType = "server_error"
			}
			metrics.RecordErrorByEndpoint(endpoint, r.Method, errorType)
		}
	})
}

// noStore disables caching of API responses; allocation state changes between
// requests.
func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
