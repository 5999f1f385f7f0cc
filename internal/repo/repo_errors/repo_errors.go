package repo_errors

import "errors"

var (
	ErrNotFound = errors.New("entity not found")

	// ErrVersionConflict is returned when an optimistic round check fails,
	// i.e. the supplier row was advanced by another request in between.
	ErrVersionConflict = errors.New("entity was modified concurrently")
)
