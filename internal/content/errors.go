package content

import "errors"

var (
	// ErrNotFound is returned when the id is not in the registry cache.
	ErrNotFound = errors.New("content: not found")
	// ErrInvalidInput wraps validation failures.
	ErrInvalidInput = errors.New("content: invalid input")
)
