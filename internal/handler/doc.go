// Package handler provides the data access object for one SQLite file.
//
// A Handler wraps a database handle and offers two layers:
//
//   - Raw execution: ExecuteQuery runs SQL text and returns every row,
//     logging and swallowing failures. Query is the same call with the
//     error returned instead.
//   - Statement assembly: Insert, Select, Update and Delete build SQL from
//     table names, column lists and Condition values, then execute it.
//
// # Key Types
//
//   - Handler: owns the handle, the pending transaction and the used-tables
//     registry
//   - Condition: a (column, operator, value) triple rendered verbatim
//   - Record: one selected row paired with the requested column names
//   - Observer: receives an Execution after every statement
//
// # Transactions
//
// An INSERT, UPDATE, DELETE or REPLACE starts a transaction when none is
// active. Other statements run in autocommit mode, so CREATE or VACUUM take
// effect at once. A transaction opened by a BEGIN statement is committed
// the same way. Commit is a no-op when no transaction is active; Close
// rolls back whatever is pending.
//
// # Security
//
// Values are concatenated into the statement text without quoting or
// escaping. Only pass trusted input.
//
// # Usage
//
//	h := handler.New(database.Config{Path: "data/app.db"}, logger)
//	if err := h.Open(); err != nil {
//	    return err
//	}
//	defer h.Close()
//
//	h.Insert(ctx, "users", []string{"1", "'Athos'"}, []string{"id", "name"})
//	records := h.Select(ctx, "users", []string{"name"}, nil, false)
//	if err := h.Commit(); err != nil {
//	    return err
//	}
package handler
