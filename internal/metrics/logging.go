package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// LoggingMiddleware logs one line per request and tags the response with
// a request ID, reusing the caller's ID when one is sent.
func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			start := time.Now()
			rw := wrap(w)
			next.ServeHTTP(rw, r)

			logger.Info("request",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", Route(r)),
				zap.Int("status", rw.statusCode),
				zap.Int("bytes", rw.bytes),
				zap.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
				zap.String("client_ip", clientIP(r)),
			)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(ip)
	}
	return r.RemoteAddr
}
