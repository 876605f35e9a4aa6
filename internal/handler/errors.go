package handler

import "errors"

// Domain-specific errors for handler operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotOpen is returned when the database handle is not open.
	ErrNotOpen = errors.New("handler: database is not open")

	// ErrAlreadyOpen is returned by Open on a handler that is already open.
	ErrAlreadyOpen = errors.New("handler: database is already open")

	// ErrTableNotRegistered is returned when releasing a table that is not
	// in the used-tables registry.
	ErrTableNotRegistered = errors.New("handler: table is not registered")

	// ErrNoColumns is logged when Select is called without columns.
	ErrNoColumns = errors.New("empty selected columns list")
)
