// Package common defines shared constants and sentinel errors used across
// the storefront server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Order status errors. Both wrap ErrorValidation.
	ErrorUnknownStatus     = Wrap(ErrorValidation, "unknown order status")
	ErrorInvalidTransition = Wrap(ErrorValidation, "status transition not allowed")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired      = errors.New("token expired")
	ErrResetTokenExpired = errors.New("reset token invalid or expired")
)
