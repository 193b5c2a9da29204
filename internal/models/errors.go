package models

import "errors"

// Error categories. Services mark concrete errors with one of these so the
// HTTP layer can pick a status code while keeping the original message.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrCancellationWindow = errors.New("cancellation window has passed")
	ErrUnavailable        = errors.New("dependency unavailable")
)
