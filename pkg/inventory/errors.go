package inventory

import "errors"

// Error categories surfaced by the store. Handlers map these to HTTP status
// codes; callers test them with errors.Is.
var (
	// ErrNotFound reports a missing record or a missing referenced parent.
	ErrNotFound = errors.New("not found")

	// ErrConflict reports a unique-field collision (hostname, ip, or name).
	ErrConflict = errors.New("already exists")

	// ErrInvalid reports a missing or malformed required field.
	ErrInvalid = errors.New("invalid input")
)
