package domain

import "errors"

// Error classes. Specific errors wrap one of these so handlers can map any
// engine or service failure to a response class with errors.Is.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("resource not found")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInternalError = errors.New("internal error")
)
