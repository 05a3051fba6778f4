package repository

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
// Callers use errors.Is to tell it apart from infrastructure failures.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint is violated.
var ErrDuplicate = errors.New("already exists")
