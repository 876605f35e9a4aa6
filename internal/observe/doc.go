// Package observe provides handler.Observer implementations that export
// every executed statement.
//
//   - Journal publishes one JSON message per statement over MQTT
//   - Metrics writes one InfluxDB point per statement
//
// Both are optional and run inline on the handler's goroutine. Export
// failures never reach the handler: the journal logs them and the InfluxDB
// client reports them through its own error callback.
package observe
