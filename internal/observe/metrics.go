package observe

import (
	"context"
	"time"

	"github.com/nerrad567/dbhandler/internal/handler"
)

// MetricWriter records one statement. *influxdb.Client satisfies it.
type MetricWriter interface {
	WriteStatementMetric(database, kind string, rows int, elapsed time.Duration, failed bool, at time.Time)
}

// Metrics writes one statement_metrics point per executed statement.
type Metrics struct {
	w MetricWriter
}

// NewMetrics creates a Metrics observer.
func NewMetrics(w MetricWriter) *Metrics {
	return &Metrics{w: w}
}

// ObserveStatement records e.
func (m *Metrics) ObserveStatement(_ context.Context, e handler.Execution) {
	m.w.WriteStatementMetric(e.Database, e.Kind, e.Rows, e.Duration, e.Err != nil, e.At)
}
