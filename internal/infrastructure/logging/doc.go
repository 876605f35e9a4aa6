// Package logging provides the dbhandler Log Sink.
//
// This package wraps Go's standard log/slog package and adds five fixed
// severities with a numeric level gate:
//
//	0 Debug     printed only when the configured level is exactly 0
//	1 Info      printed when the configured level is <= 1
//	2 Warning   printed when the configured level is <= 2
//	3 Critical  printed when the configured level is <= 3
//	4 Fatal     printed when the configured level is <= 4 (always)
//
// # Formats
//
//   - console (default): one bracketed line per message, e.g.
//     "[WARNING]\t Record already inserted"
//   - json: slog JSON records with service and version fields
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warning, critical, fatal or 0-4
//	  format: "console"  # console, json
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("DB is opened: " + path)
//	logger.ExceptionHandling(err) // [CRITICAL]	 Exception type ... caught: ...
package logging
