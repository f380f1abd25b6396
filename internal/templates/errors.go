package templates

import "errors"

var (
	// ErrNotFound indicates no template has the requested name.
	ErrNotFound = errors.New("template not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates a template with the same name already exists.
	ErrConflict = errors.New("template already exists")
)
