// Package database provides SQLite connectivity for dbhandler.
//
// This package manages:
//   - Opening one SQLite file through github.com/mattn/go-sqlite3
//   - Exposing it as an *sqlx.DB so callers can scan rows generically
//   - WAL mode and busy timeout configuration
//   - Lifecycle (open, health check, close)
//
// The pool is pinned to a single connection, which a handler takes with
// Reserve for its whole lifetime. The file name is percent-encoded into a
// SQLite URI, and a missing parent directory is an error.
//
// Security Considerations:
//   - Database file permissions are set to 0600 (owner read/write only)
//   - Query text built by the handler package is NOT parameterised
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: "data/app.db", BusyTimeout: 5})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
package database
