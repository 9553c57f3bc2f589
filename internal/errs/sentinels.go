// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service/transport layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or out-of-range user input. Always recoverable.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoProfile indicates an operation that requires a saved profile.
	ErrNoProfile = errors.New("profile not set")

	// ErrFlowActive indicates another conversational flow is in progress for the user.
	ErrFlowActive = errors.New("flow in progress")

	// ErrUnavailable indicates an external data source could not answer.
	ErrUnavailable = errors.New("unavailable")
)
