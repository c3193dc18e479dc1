package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCredentials is returned when an authenticated call is made
	// with no stored token pair.
	ErrNoCredentials = errors.New("no stored credentials")

	// ErrSessionExpired is returned when the refresh protocol failed or
	// the server rejected a freshly refreshed token. The credential
	// store has been cleared; the operator must log in again.
	ErrSessionExpired = errors.New("session expired, please log in again")
)

// RemoteError is a non-2xx business response from the server, carrying
// the server-provided message. It is never retried by the client.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// NetworkError is a transport-level failure (timeout, refused
// connection, broken body). Distinct from RemoteError so callers can
// decide to retry manually.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError rejects malformed input before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Reason) }
