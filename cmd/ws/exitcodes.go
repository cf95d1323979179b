package main

import (
	"errors"

	"github.com/matsen/whitespace/internal/report"
	"github.com/matsen/whitespace/internal/whitespace"
)

// Exit codes
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError  = 2 // Configuration error (unreadable or invalid config)
	ExitDataError    = 3 // Data error (malformed payload, no evidence, rejected request)
	ExitServiceError = 4 // Analytics service error (auth, rate limit, network, bad response)
)

// exitCodeFor maps an operation error to an exit code.
func exitCodeFor(err error) int {
	var apiErr *whitespace.APIError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, whitespace.ErrInvalidRequest), errors.Is(err, report.ErrNoEvidence):
		return ExitDataError
	case whitespace.IsAuthError(err), whitespace.IsRateLimited(err),
		errors.Is(err, whitespace.ErrNetworkError), errors.Is(err, whitespace.ErrInvalidResponse),
		errors.As(err, &apiErr):
		return ExitServiceError
	default:
		return ExitError
	}
}
