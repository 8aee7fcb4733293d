package files

import "errors"

var (
	// ErrNotFound is returned when the id is not in the registry cache.
	ErrNotFound = errors.New("files: not found")
	// ErrInvalidInput wraps upload validation failures.
	ErrInvalidInput = errors.New("files: invalid input")
)
