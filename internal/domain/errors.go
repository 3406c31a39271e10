package domain

import "errors"

var (
	// ErrNotFound is returned when a user, record or question does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique field (email) is already taken.
	ErrConflict = errors.New("conflict")
	// ErrInvalidRiver is returned for any river outside the catalogue.
	ErrInvalidRiver = errors.New("invalid river")
	// ErrInvalidInput is returned when a request fails validation.
	ErrInvalidInput = errors.New("invalid input")
)
