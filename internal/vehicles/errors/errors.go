package errors

import "errors"

var (
	ErrNotFound      = errors.New("vehicle not found")
	ErrInvalidID     = errors.New("invalid vehicle id")
	ErrNotAvailable  = errors.New("vehicle not available")
	ErrDuplicateRego = errors.New("registration number already exists")
)
