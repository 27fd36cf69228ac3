package store

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a uniqueness constraint is violated.
	ErrConflict = errors.New("record already exists")
	// ErrUnknownRequest is returned when the database rejects a request for a reason
	// the store cannot classify (broken schema, malformed statement, engine failure).
	ErrUnknownRequest = errors.New("unknown database request error")
)
