package database

import "errors"

// ErrEmptyPath is returned by Open when no database file is configured.
var ErrEmptyPath = errors.New("database: path cannot be empty")

// ErrNotDirectory is returned by Open when the parent of the database path
// is not a directory.
var ErrNotDirectory = errors.New("database: parent is not a directory")
