// Package influxdb provides InfluxDB connectivity for dbhandler statement
// metrics.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched writes and health monitoring.
//
// # Measurements
//
//	statement_metrics  tags: database, kind, status  fields: duration_ms, rows
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	client.SetLogger(log)
//
//	client.WriteStatementMetric("app.db", "SELECT", 3, elapsed, false, start)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write errors arrive asynchronously and go to the Logger set with SetLogger.
// Connection and health check errors are returned directly.
package influxdb
