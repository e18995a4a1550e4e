// internal/api/response/response.go
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/newthinker/trendpulse/internal/core"
)

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// JSON writes data as the raw response body.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Detail converts err into its wire form. Errors outside the core
// taxonomy are reported as INTERNAL_ERROR without their text.
func Detail(err error) ErrorDetail {
	detail := ErrorDetail{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}

	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		detail.Code = coreErr.Code
		detail.Message = coreErr.Message
		if coreErr.Cause != nil {
			detail.Cause = coreErr.Cause.Error()
		}
	}
	return detail
}

// Error writes an error response.
func Error(w http.ResponseWriter, status int, err error) {
	JSON(w, status, ErrorResponse{Error: Detail(err)})
}

// Fail writes err with the status its code maps to.
func Fail(w http.ResponseWriter, err error) {
	Error(w, StatusCode(err), err)
}

// StatusCode maps the error taxonomy onto HTTP statuses.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrKeywordNotFound), errors.Is(err, core.ErrUnknownPlatform):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUpstreamUnavailable), errors.Is(err, core.ErrLLMFailed):
		return http.StatusBadGateway
	case errors.Is(err, core.ErrLLMDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
