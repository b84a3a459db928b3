package domain

import "errors"

var (
	// ErrInvalidParameter marks caller-supplied simulation parameters that are out of range.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrValidation marks an entity that violates its field constraints.
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	// ErrConflict marks a duplicate key or a delete blocked by a reference.
	ErrConflict = errors.New("conflict")
)
