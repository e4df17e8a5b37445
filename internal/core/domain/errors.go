package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound              = errors.New("domain: not found")
	ErrInvalidArgument       = errors.New("domain: invalid argument")
	ErrConfiguration         = errors.New("configuration error")
	ErrAuthorizationRequired = errors.New("authorization required")
	ErrExchangeFailed        = errors.New("authorization code exchange failed")
	ErrRateLimited           = errors.New("rate limited")
	ErrUpstreamServer        = errors.New("upstream server error")
	ErrUpstreamStatus        = errors.New("unexpected upstream status")
	ErrSchema                = errors.New("schema error")
	ErrInsufficientData      = errors.New("insufficient data")
)

// ConfigurationError reports missing or invalid startup configuration.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// AuthorizationRequiredError means the user has to complete the browser
// OAuth flow again. It is never retried automatically.
type AuthorizationRequiredError struct {
	AuthorizeURL string
	Status       int
}

func (e *AuthorizationRequiredError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("authorization required (upstream status %d): %s", e.Status, e.AuthorizeURL)
	}
	return fmt.Sprintf("authorization required: %s", e.AuthorizeURL)
}

func (e *AuthorizationRequiredError) Is(target error) bool { return target == ErrAuthorizationRequired }

// ExchangeError wraps a failed authorization-code exchange.
type ExchangeError struct {
	Err error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("authorization code exchange failed: %v", e.Err)
}

func (e *ExchangeError) Unwrap() error { return e.Err }

func (e *ExchangeError) Is(target error) bool { return target == ErrExchangeFailed }

// RateLimitedError is returned once rate-limit retries are exhausted.
type RateLimitedError struct {
	Attempts   int
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited after %d attempts (last retry-after %s)", e.Attempts, e.RetryAfter)
}

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }

// UpstreamServerError is returned once transient server-error retries are
// exhausted. Status is zero when the last failure was a transport error.
type UpstreamServerError struct {
	Status   int
	Attempts int
	Err      error
}

func (e *UpstreamServerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream failed after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("upstream failed after %d attempts: status %d", e.Attempts, e.Status)
}

func (e *UpstreamServerError) Unwrap() error { return e.Err }

func (e *UpstreamServerError) Is(target error) bool { return target == ErrUpstreamServer }

// UpstreamStatusError is a non-retryable, non-authorization upstream status.
type UpstreamStatusError struct {
	Status int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("unexpected upstream status %d", e.Status)
}

func (e *UpstreamStatusError) Is(target error) bool { return target == ErrUpstreamStatus }

// SchemaError names a column that is required but unknown or absent.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error: unknown or missing column %q", e.Column)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// InsufficientDataError means there are too few usable rows to split and
// evaluate a model.
type InsufficientDataError struct {
	Rows int
	Min  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d usable rows, need at least %d", e.Rows, e.Min)
}

func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }
