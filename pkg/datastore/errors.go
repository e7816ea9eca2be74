package datastore

import "errors"

// Error kinds returned by datastore operations. Storage failures are wrapped
// verbatim and count as internal; deadline expiry surfaces as the caller's
// context error.
var (
	// ErrNotFound reports a mutation or lookup that targeted an absent key.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists reports an Add that targeted a present key.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidArgument reports an empty identifier or a malformed record.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrFailedPrecondition reports a referential failure during a
	// multi-record write, such as a group naming a role that does not exist.
	ErrFailedPrecondition = errors.New("failed precondition")

	// ErrUnimplemented reports a filter not supported in the current build.
	ErrUnimplemented = errors.New("unimplemented")
)

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
