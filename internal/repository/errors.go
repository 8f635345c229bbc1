package repository

import "errors"

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when a record fails validation before it reaches the database
	ErrInvalidInput = errors.New("invalid input")
)
