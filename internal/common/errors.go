// Package common defines shared constants and sentinel errors used across
// client and server layers of keygate. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// Auth errors. ErrInvalidCredentials covers both unknown user and wrong
	// password so the two cannot be told apart.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("could not validate credentials")
	ErrForbidden          = errors.New("forbidden")

	// Role changes.
	ErrAlreadyInState = errors.New("already in requested state")

	// Token codec errors. They never leave the server; the session
	// resolver collapses both into ErrUnauthenticated.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Array errors.
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrArrayEmpty      = errors.New("array is empty")
)
