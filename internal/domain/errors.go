package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUpstreamFailure is returned when a forwarded third-party request fails
	ErrUpstreamFailure = errors.New("upstream request failed")

	// ErrEmptyUpstreamResponse is returned when the upstream answers with an empty body
	ErrEmptyUpstreamResponse = errors.New("upstream returned an empty response")

	// ErrNotConfigured is returned when an upstream integration is missing credentials
	ErrNotConfigured = errors.New("integration not configured")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrKeyNotFound is returned when a key is absent from the key-value store
	ErrKeyNotFound = errors.New("key not found")

	// ErrSourceFetch is returned when a trend source document cannot be retrieved
	ErrSourceFetch = errors.New("trend source fetch failed")
)

// ValidationError carries a client-facing message for a rejected request.
type ValidationError struct {
	Message string
}

// NewValidationError creates a ValidationError with the given message
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}
