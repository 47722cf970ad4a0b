// Package apperrors holds the error taxonomy shared by services and handlers.
// Services wrap these sentinels with context; handlers classify them with errors.Is.
package apperrors

import "errors"

var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated marks a missing or unknown session token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrConflict marks a uniqueness violation, e.g. a duplicate email.
	ErrConflict = errors.New("conflict")
	// ErrNotFound marks an unknown id, or a record the caller does not own.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials marks a password mismatch on login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
