package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"sp500dash/internal/dashboard"
)

// APIError is the JSON body of every error response.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string { return e.Message }

// Render implements render.Renderer.
func (e *APIError) Render(_ http.ResponseWriter, r *http.Request) error {
	e.RequestID = RequestIDFrom(r.Context())
	render.Status(r, e.StatusCode)
	return nil
}

func newAPIError(status int, code, msg string, details any) *APIError {
	return &APIError{StatusCode: status, ErrorCode: code, Message: msg, Details: details}
}

var (
	errRateLimited = newAPIError(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded", nil)
	errNotFound    = newAPIError(http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
)

func invalidRequest(err error) *APIError {
	return newAPIError(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request", err.Error())
}

// fromError maps service errors onto API errors.
func fromError(err error) *APIError {
	switch {
	case errors.Is(err, dashboard.ErrInvalidCriteria):
		return newAPIError(http.StatusBadRequest, "VALIDATION_FAILED", "Criteria validation failed", err.Error())
	case errors.Is(err, dashboard.ErrNilPanel):
		return newAPIError(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Dashboard data not loaded yet", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return newAPIError(http.StatusServiceUnavailable, "REQUEST_CANCELLED", "Request cancelled", err.Error())
	default:
		return newAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", nil)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, e *APIError) {
	// Copy so the shared sentinels never carry a request id.
	out := *e
	_ = render.Render(w, r, &out)
}
