// internal/api/middleware/auth.go
package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/newthinker/trendpulse/internal/api/response"
	"github.com/newthinker/trendpulse/internal/core"
)

// APIKeyHeader carries the operator key on admin requests.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth returns middleware that validates the X-API-Key header.
// If apiKey is empty, authentication is disabled.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			providedKey := r.Header.Get(APIKeyHeader)
			if providedKey == "" {
				response.Error(w, http.StatusUnauthorized,
					core.WrapError(core.ErrUnauthorized, errors.New("missing "+APIKeyHeader+" header")))
				return
			}

			// Constant-time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
				response.Error(w, http.StatusUnauthorized, core.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
