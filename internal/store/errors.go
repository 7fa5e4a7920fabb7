package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update would violate a unique
// constraint, e.g. registering an email that is already taken.
var ErrDuplicate = errors.New("duplicate record")
