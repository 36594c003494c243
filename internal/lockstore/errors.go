package lockstore

import "errors"

var (
	// ErrInvalidPath indicates a resource path that cannot be keyed.
	ErrInvalidPath = errors.New("invalid resource path")

	// ErrLockExists indicates a live lock already holds the resource.
	ErrLockExists = errors.New("lock already exists")

	// ErrNotFound indicates no lock record exists for the resource.
	ErrNotFound = errors.New("lock not found")

	// ErrParse indicates a lock record that could not be decoded.
	ErrParse = errors.New("malformed lock record")
)
