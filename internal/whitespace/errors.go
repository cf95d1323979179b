package whitespace

import (
	"errors"
	"fmt"
)

// Errors returned by the analytics client.
var (
	// ErrInvalidRequest indicates a request rejected before it was sent.
	ErrInvalidRequest = errors.New("invalid analysis request")

	// ErrAuthError indicates a missing or rejected API token.
	ErrAuthError = errors.New("analytics service authentication error")

	// ErrRateLimited indicates the service asked us to slow down.
	ErrRateLimited = errors.New("analytics service rate limit exceeded")

	// ErrNetworkError indicates the service could not be reached.
	ErrNetworkError = errors.New("network error communicating with analytics service")

	// ErrInvalidResponse indicates a response that is not a graph payload.
	ErrInvalidResponse = errors.New("invalid response from analytics service")
)

// APIError is a non-success response from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("analytics service error (status %d): %s", e.StatusCode, e.Message)
}

// IsAuthError reports whether err is an authentication failure.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsRateLimited reports whether err is a rate-limit response.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
