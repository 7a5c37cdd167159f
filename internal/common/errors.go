// Package common defines shared constants and sentinel errors used across
// the Signify server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// ErrMissingCredentials is returned when a component that needs the
	// elevated service connection was started without one.
	ErrMissingCredentials = errors.New("missing database credentials")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrSessionNotFound means the access token refers to a session this
	// process does not hold (expired, logged out or server restarted).
	ErrSessionNotFound = errors.New("session not found")
)
