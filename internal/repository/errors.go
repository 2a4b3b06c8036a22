package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates an insert violated a uniqueness constraint.
	ErrDuplicate = errors.New("repository: duplicate")
	// ErrConflict indicates a compare-and-swap lost against a concurrent writer.
	ErrConflict = errors.New("repository: conflict")
)
