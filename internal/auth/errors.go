package auth

import "fmt"

// ErrorKind classifies authentication failures.
type ErrorKind int

const (
	// InvalidCredentials means the controller rejected the client id/secret
	// pair (401/403 from the token endpoint).
	InvalidCredentials ErrorKind = iota
	// NetworkFailure covers connection and timeout errors reaching the
	// token endpoint.
	NetworkFailure
	// MalformedResponse means the token endpoint answered but the body
	// lacked an access token or expiry.
	MalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidCredentials:
		return "invalid credentials"
	case NetworkFailure:
		return "network failure"
	case MalformedResponse:
		return "malformed response"
	default:
		return "unknown"
	}
}

// Error is an authentication failure. Authentication errors are fatal to a
// run: nothing can be fetched without a token.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Kind, e.Err)
	}
	return "auth: " + e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Remediation returns operator guidance for the failure.
func (e *Error) Remediation() string {
	switch e.Kind {
	case InvalidCredentials:
		return "check the API client name, secret and account, and that the API client has the Administrator or Account Owner role"
	case NetworkFailure:
		return "check the controller URL and network connectivity"
	default:
		return "check that the controller version supports OAuth API clients"
	}
}
