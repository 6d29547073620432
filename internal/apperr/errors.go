// Package apperr defines the sentinel errors shared across the core. Callers
// match them with errors.Is; services wrap them with fmt.Errorf("...: %w", ...)
// to add context.
package apperr

import "errors"

var (
	// ErrInvalidTransition signals a state-machine guard violation (approval
	// already decided, distribution edge not allowed). Refetch and re-decide.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidLocation signals malformed or missing coordinates.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrNotFound signals a missing referenced entity.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable signals a transient storage failure, retryable with
	// backoff.
	ErrStoreUnavailable = errors.New("store unavailable")
)
