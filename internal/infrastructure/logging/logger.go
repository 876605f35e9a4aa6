package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/dbhandler/internal/infrastructure/config"
)

// slog levels backing the five Log Sink severities.
const (
	LevelDebug    = slog.LevelDebug
	LevelInfo     = slog.LevelInfo
	LevelWarning  = slog.LevelWarn
	LevelCritical = slog.LevelError
	LevelFatal    = slog.Level(12)
)

// Logger wraps slog.Logger with the five dbhandler severities and the
// error-to-message adapter used by the data access layer.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Logger struct {
	*slog.Logger
	level int
}

// New creates a new Logger with the specified configuration.
//
// It configures:
//   - Output destination (stdout unless "stderr" is requested)
//   - Output format (bracketed console lines, or JSON)
//   - The numeric level gate (0-4)
//
// An unparseable level falls back to info; config.Validate reports it
// before this point in normal startup.
func New(cfg config.LoggingConfig, version string) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}

	return NewWriter(output, cfg, version)
}

// NewWriter is New with an explicit destination.
func NewWriter(w io.Writer, cfg config.LoggingConfig, version string) *Logger {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		level = config.LevelInfo
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			// The gate decides; let every record through to here.
			Level:       slog.Level(-8),
			ReplaceAttr: replaceLevelName,
		}).WithAttrs([]slog.Attr{
			slog.String("service", "dbhandler"),
			slog.String("version", version),
		})
	default:
		handler = newConsoleHandler(w)
	}

	return &Logger{
		Logger: slog.New(&gateHandler{next: handler, level: level}),
		level:  level,
	}
}

// Default creates a default logger for use before configuration is loaded.
// It writes console lines to stdout at info level.
func Default() *Logger {
	return New(config.LoggingConfig{
		Level:  "info",
		Format: "console",
		Output: "stdout",
	}, "dev")
}

// Level returns the configured numeric level (0-4).
func (l *Logger) Level() int {
	return l.level
}

// With returns a new Logger with additional default attributes.
//
// Example:
//
//	dbLogger := logger.With("component", "handler")
//	dbLogger.Info("opened") // Includes component=handler
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
		level:  l.level,
	}
}

// Warning logs at warning severity (2).
func (l *Logger) Warning(msg string, args ...any) {
	l.Log(context.Background(), LevelWarning, msg, args...)
}

// Critical logs at critical severity (3).
func (l *Logger) Critical(msg string, args ...any) {
	l.Log(context.Background(), LevelCritical, msg, args...)
}

// Fatal logs at fatal severity (4). Unlike log.Fatal it does not exit.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Log(context.Background(), LevelFatal, msg, args...)
}

// ExceptionHandling converts a caught error into one critical line carrying
// the error's dynamic type name and its message. A nil error is ignored.
//
// Example output:
//
//	[CRITICAL]	 Exception type sqlite3.Error caught: no such table: missing
func (l *Logger) ExceptionHandling(err error) {
	if err == nil {
		return
	}
	l.Critical("Exception type " + typeName(err) + " caught: " + err.Error())
}

// typeName returns the Go type of the innermost error in err's wrap chain,
// without a leading pointer marker. Wrapping with fmt.Errorf keeps the
// driver's type visible.
func typeName(err error) string {
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			break
		}
		err = inner
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}

// severity maps an slog level onto the 0-4 scale.
func severity(lvl slog.Level) int {
	switch {
	case lvl < LevelInfo:
		return config.LevelDebug
	case lvl < LevelWarning:
		return config.LevelInfo
	case lvl < LevelCritical:
		return config.LevelWarning
	case lvl < LevelFatal:
		return config.LevelCritical
	default:
		return config.LevelFatal
	}
}

// allowed reports whether a record at lvl passes a gate configured at level.
// Debug only prints at level 0 exactly; every other severity prints when the
// configured level is at or below it.
func allowed(level int, lvl slog.Level) bool {
	s := severity(lvl)
	if s == config.LevelDebug {
		return level == config.LevelDebug
	}
	return level <= s
}

// levelTag returns the bracketed name for a level.
func levelTag(lvl slog.Level) string {
	switch severity(lvl) {
	case config.LevelDebug:
		return "DEBUG"
	case config.LevelInfo:
		return "INFO"
	case config.LevelWarning:
		return "WARNING"
	case config.LevelCritical:
		return "CRITICAL"
	default:
		return "FATAL"
	}
}

// replaceLevelName renders level names in JSON output using the Log Sink's
// vocabulary instead of slog's (WARN, ERROR, ERROR+4).
func replaceLevelName(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(levelTag(lvl))
		}
	}
	return a
}

// gateHandler enforces the five-level gate in front of another handler.
type gateHandler struct {
	next  slog.Handler
	level int
}

func (h *gateHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return allowed(h.level, lvl) && h.next.Enabled(ctx, lvl)
}

func (h *gateHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.next.Handle(ctx, r)
}

func (h *gateHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &gateHandler{next: h.next.WithAttrs(attrs), level: h.level}
}

func (h *gateHandler) WithGroup(name string) slog.Handler {
	return &gateHandler{next: h.next.WithGroup(name), level: h.level}
}
