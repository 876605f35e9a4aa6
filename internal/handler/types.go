package handler

import (
	"context"
	"strings"
	"time"
)

// Operator is the relational operator of a Condition. Any string is
// accepted and written into the statement verbatim; the constants only name
// the common ones.
type Operator string

// Common operators.
const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLike         Operator = "LIKE"
	OpGlob         Operator = "GLOB"
	OpIs           Operator = "IS"
	OpIsNot        Operator = "IS NOT"
)

// Condition is a (column, operator, value) triple used for WHERE fragments
// and, with OpEqual, for UPDATE assignments.
//
// Value is inserted as-is. String literals must be quoted by the caller:
//
//	handler.Condition{Column: "name", Operator: handler.OpEqual, Value: "'Athos'"}
type Condition struct {
	Column   string
	Operator Operator
	Value    string
}

// String renders the condition as "<column> <operator> <value>".
func (c Condition) String() string {
	return c.Column + " " + string(c.Operator) + " " + c.Value
}

// Assignment is one "column = value" pair of an UPDATE statement.
type Assignment struct {
	Column string
	Value  string
}

// Row is one result row, one driver value per result column.
type Row []any

// Strings renders each value as text. NULL becomes "NULL" and BLOBs are
// written as raw bytes.
func (r Row) Strings() []string {
	out := make([]string, 0, len(r))
	for _, v := range r {
		out = append(out, text(v))
	}
	return out
}

// Field is one column of a selected record.
type Field struct {
	Column string
	Value  any
}

// String renders the field as "(column, value)".
func (f Field) String() string {
	return "(" + f.Column + ", " + text(f.Value) + ")"
}

// Record is a result row zipped with the requested column names.
type Record []Field

// Execution describes one statement run through a Handler.
type Execution struct {
	// Database is the base name of the database file.
	Database string

	// Statement is the SQL text as executed.
	Statement string

	// Kind is the upper-cased leading keyword (SELECT, INSERT, PRAGMA, ...).
	Kind string

	// Rows is the number of rows returned.
	Rows int

	// Duration is the wall time spent in the driver.
	Duration time.Duration

	// Err is the driver error, if any.
	Err error

	// At is when execution started.
	At time.Time
}

// Observer is notified after every statement, on the caller's goroutine.
// Implementations must not call back into the Handler.
type Observer interface {
	ObserveStatement(ctx context.Context, e Execution)
}

// statementKind returns the upper-cased first word of a statement.
func statementKind(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(strings.TrimRight(fields[0], ";"))
}

// opensTransaction reports whether a statement of kind starts an implicit
// transaction when none is active.
func opensTransaction(kind string) bool {
	switch kind {
	case "INSERT", "UPDATE", "DELETE", "REPLACE":
		return true
	}
	return false
}
