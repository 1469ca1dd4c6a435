package model

import "errors"

// Sentinel errors returned by store operations. Wrapped with context via
// fmt.Errorf("%w", ...) and matched with errors.Is at the API layer.
var (
	// ErrNotFound means a referenced item or claim does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition means a state change was attempted from a
	// terminal or inapplicable state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrValidation means the input was malformed.
	ErrValidation = errors.New("validation failed")

	// ErrPermissionDenied means a role-based precondition was violated.
	ErrPermissionDenied = errors.New("permission denied")
)
