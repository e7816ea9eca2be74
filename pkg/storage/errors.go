package storage

import "errors"

// Common storage errors - implementation agnostic
var (
	// ErrNotFound is returned when a record to remove does not exist
	ErrNotFound = errors.New("record not found")

	// ErrCorrupt is returned when a persisted record cannot be decoded
	ErrCorrupt = errors.New("corrupt record")

	// ErrUnavailable is returned when the backend cannot be reached
	ErrUnavailable = errors.New("storage backend unavailable")
)

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnavailableError checks if an error is a backend availability error
func IsUnavailableError(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
