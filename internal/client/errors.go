package client

import (
	"errors"
	"fmt"
)

// ErrorKind classifies API call failures.
type ErrorKind int

const (
	// Unauthorized means the controller rejected the bearer token (403, or a
	// 401 that survived the forced re-authentication).
	Unauthorized ErrorKind = iota
	// NotFound means the requested entity does not exist (404).
	NotFound
	// RateLimited means the controller throttled the call (429) and retries
	// with backoff were exhausted.
	RateLimited
	// ServerError means a 5xx persisted through every retry.
	ServerError
	// Timeout covers request timeouts and connection failures that persisted
	// through every retry.
	Timeout
	// Malformed means the request was rejected as invalid (other 4xx) or the
	// response body could not be used.
	Malformed
)

func (k ErrorKind) String() string {
	switch k {
	case Unauthorized:
		return "unauthorized"
	case NotFound:
		return "not found"
	case RateLimited:
		return "rate limited"
	case ServerError:
		return "server error"
	case Timeout:
		return "timeout"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// APIError is a failed controller call after all applicable retries.
type APIError struct {
	Kind     ErrorKind
	Endpoint string
	Status   int
	Err      error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("api: %s: %s", e.Endpoint, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error { return e.Err }

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
