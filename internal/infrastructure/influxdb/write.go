package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementStatements is the measurement that holds one point per
// executed SQL statement.
const MeasurementStatements = "statement_metrics"

// WriteStatementMetric records one executed statement.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - database: Base name of the database file (tag)
//   - kind: Leading SQL keyword, e.g. "SELECT" (tag)
//   - rows: Number of rows the statement returned
//   - elapsed: Time spent in the driver
//   - failed: Whether the statement returned an error (tag status=error)
//   - at: When the statement started
//
// Example:
//
//	client.WriteStatementMetric("app.db", "SELECT", 12, 3*time.Millisecond, false, start)
func (c *Client) WriteStatementMetric(database, kind string, rows int, elapsed time.Duration, failed bool, at time.Time) {
	if !c.IsConnected() || c.points == nil {
		return
	}

	c.points.WritePoint(statementPoint(database, kind, rows, elapsed, failed, at))
}

// statementPoint builds the point written by WriteStatementMetric.
func statementPoint(database, kind string, rows int, elapsed time.Duration, failed bool, at time.Time) *write.Point {
	status := "ok"
	if failed {
		status = "error"
	}
	if kind == "" {
		kind = "UNKNOWN"
	}

	return write.NewPoint(
		MeasurementStatements,
		map[string]string{
			"database": database,
			"kind":     kind,
			"status":   status,
		},
		map[string]interface{}{
			"duration_ms": float64(elapsed) / float64(time.Millisecond),
			"rows":        rows,
		},
		at,
	)
}
