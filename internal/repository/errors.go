package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a uniqueness constraint is violated
	// (one wallet per driver, one earning per booking).
	ErrDuplicate = errors.New("entity already exists")

	// ErrStaleStatus is returned when a guarded status update matches no
	// row because the entity left the expected status since it was read.
	ErrStaleStatus = errors.New("entity status changed concurrently")
)
