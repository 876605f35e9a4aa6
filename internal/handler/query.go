package handler

import (
	"context"
	"fmt"
	"strings"
)

// Insert adds one row to table. Data values are written into the statement
// verbatim, so string literals must carry their own quotes.
//
// Example:
//
//	h.Insert(ctx, "users", []string{"1", "'Athos'"}, []string{"id", "name"})
//	// INSERT INTO users (id,name) VALUES (1,'Athos');
func (h *Handler) Insert(ctx context.Context, table string, data, columns []string) {
	if h.IsRegistered(table, data, columns) {
		h.log.Warning("Record already inserted")
		return
	}

	query := strings.Join([]string{
		"INSERT INTO",
		table,
		"(" + strings.Join(columns, ",") + ")",
		"VALUES",
		"(" + strings.Join(data, ",") + ")",
	}, " ") + ";"
	h.ExecuteQuery(ctx, query)
}

// Select reads columns from table and pairs every value with its column
// name. A nil or empty condition selects every row; distinct adds DISTINCT.
//
// Failures are logged and yield an empty result, never an error.
func (h *Handler) Select(ctx context.Context, table string, columns []string, condition []Condition, distinct bool) []Record {
	records := []Record{}
	if len(columns) == 0 {
		h.log.ExceptionHandling(ErrNoColumns)
		return records
	}

	keyword := "SELECT"
	if distinct {
		keyword = "SELECT DISTINCT"
	}
	var where string
	if len(condition) > 0 {
		where = h.WhereClause(condition)
	}
	query := strings.Join([]string{
		keyword,
		strings.Join(columns, ", "),
		"FROM " + table,
		where,
	}, " ") + ";"

	debug := h.debugging()
	for _, row := range h.ExecuteQuery(ctx, query) {
		n := min(len(columns), len(row))
		record := make(Record, 0, n)
		for i := 0; i < n; i++ {
			record = append(record, Field{Column: columns[i], Value: row[i]})
		}
		records = append(records, record)

		if debug {
			parts := make([]string, 0, n)
			for _, f := range record {
				parts = append(parts, f.Column+" = "+text(f.Value))
			}
			h.log.Debug("Select raw return values: " + fmt.Sprint(row))
			h.log.Debug("Returned line: " + strings.Join(parts, ", "))
		}
	}
	if debug {
		h.log.Debug("Selected records: " + fmt.Sprint(records))
	}

	return records
}

// Update sets each assignment on the rows matching condition.
//
// Example:
//
//	h.Update(ctx, "t",
//		[]handler.Assignment{{Column: "a", Value: "5"}},
//		[]handler.Condition{{Column: "b", Operator: handler.OpEqual, Value: "2"}})
//	// UPDATE t SET a = 5 WHERE b = 2;
func (h *Handler) Update(ctx context.Context, table string, data []Assignment, condition []Condition) {
	set := make([]Condition, 0, len(data))
	for _, a := range data {
		set = append(set, Condition{Column: a.Column, Operator: OpEqual, Value: a.Value})
	}

	query := strings.Join([]string{
		"UPDATE " + table + " SET",
		JoinConditions(set),
		h.WhereClause(condition),
	}, " ") + ";"
	h.ExecuteQuery(ctx, query)
}

// Delete removes the rows of table matching condition.
func (h *Handler) Delete(ctx context.Context, table string, condition []Condition) {
	query := "DELETE FROM " + table + " " + h.WhereClause(condition) + ";"
	h.ExecuteQuery(ctx, query)
}

// WhereClause renders condition as a WHERE fragment. An empty condition
// still yields "WHERE ".
func (h *Handler) WhereClause(condition []Condition) string {
	clause := "WHERE " + JoinConditions(condition)
	h.log.Debug("WHERE clause: " + clause)
	return clause
}

// JoinConditions renders each condition as "<column> <operator> <value>" and
// joins them with a bare comma. No AND or OR is inserted.
func JoinConditions(conds []Condition) string {
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ",")
}

// IsRegistered reports whether a row with data already exists in table.
//
// The lookup is not implemented: the (value, "=", column) pairs are built
// and logged, but the check always reports false.
func (h *Handler) IsRegistered(table string, data, columns []string) bool {
	h.log.Debug(fmt.Sprint(data))
	h.log.Debug(fmt.Sprint(columns))

	n := min(len(data), len(columns))
	pairs := make([]Condition, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, Condition{Column: data[i], Operator: OpEqual, Value: columns[i]})
	}
	h.log.Debug("Duplicate check on " + table + ": " + JoinConditions(pairs))

	// TODO: run a SELECT against table with pairs once values are quoted.
	var result []Record
	return len(result) > 0
}
