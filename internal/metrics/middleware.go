package metrics

import (
	"net/http"
	"strings"
	"time"
)

// UnmatchedRoute labels requests no route pattern matched, so probes for
// random paths share one series.
const UnmatchedRoute = "unmatched"

// responseWriter remembers the status and body size for the middlewares.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	bytes       int
	wroteHeader bool
}

func wrap(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Route returns the path part of the ServeMux pattern that served r,
// e.g. "/api/trends/rising" for "GET /api/trends/rising". The mux sets
// the pattern on the request it was given, so this is only meaningful
// after the handler chain has run.
func Route(r *http.Request) string {
	if r.Pattern == "" {
		return UnmatchedRoute
	}
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return path
	}
	return r.Pattern
}

// HTTPMiddleware returns middleware that records HTTP metrics labelled by
// route pattern.
func HTTPMiddleware(reg *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reg.InFlightInc()
			defer reg.InFlightDec()

			start := time.Now()

			rw := wrap(w)
			next.ServeHTTP(rw, r)

			reg.RecordRequest(r.Method, Route(r), rw.statusCode, time.Since(start).Seconds())
		})
	}
}
