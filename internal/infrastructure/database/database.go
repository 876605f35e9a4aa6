package database

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Database configuration constants.
const (
	// driverName is the database/sql name registered by go-sqlite3.
	driverName = "sqlite3"

	// filePermissions is the permission mode for the database file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second
)

// DB wraps an sqlx connection to one SQLite file.
// Only one connection is ever open, so the handle has a single owner.
type DB struct {
	*sqlx.DB
	path string
}

// Config contains database configuration options.
// These map to the database section of config.yaml.
type Config struct {
	// Path is the filesystem path to the SQLite database file.
	// Its directory must already exist.
	Path string

	// WALMode enables Write-Ahead Logging.
	WALMode bool

	// BusyTimeout is the maximum time to wait for a database lock (seconds).
	BusyTimeout int
}

// Open creates a new database connection with the specified configuration.
//
// The file is created if missing, but its directory is not. The pool is
// pinned to a single connection, verified with HealthCheck before Open
// returns.
//
// Returns:
//   - *DB: Connected database wrapper
//   - error: If the path is invalid or inaccessible
func Open(cfg Config) (*DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("opening database: %w", ErrEmptyPath)
	}

	dir := filepath.Dir(cfg.Path)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("opening database: %w: %s", ErrNotDirectory, dir)
	}

	sqlDB, err := sqlx.Open(driverName, dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection: the pending transaction and every statement share it.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	db := &DB{
		DB:   sqlDB,
		path: cfg.Path,
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // File may only appear after the first write

	return db, nil
}

// dsn builds a go-sqlite3 URI filename for cfg. Every path segment is
// percent-encoded, so '?', '#' and '%' stay part of the file name.
// Foreign keys keep SQLite's default (off).
//
// See: https://github.com/mattn/go-sqlite3#connection-string
func dsn(cfg Config) string {
	segments := strings.Split(filepath.ToSlash(cfg.Path), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}

	params := url.Values{}
	params.Set("_busy_timeout", strconv.Itoa(cfg.BusyTimeout*msPerSecond))
	if cfg.WALMode {
		params.Set("_journal_mode", "WAL")
		params.Set("_synchronous", "NORMAL")
	}

	u := url.URL{
		Scheme:   "file",
		Opaque:   strings.Join(segments, "/"),
		RawQuery: params.Encode(),
	}
	return u.String()
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Path returns the filesystem path to the database file.
func (db *DB) Path() string {
	return db.path
}

// HealthCheck verifies the database is accessible and functioning.
func (db *DB) HealthCheck(ctx context.Context) error {
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Reserve takes the pool's only connection. Until the returned Conn is
// closed, every other use of db waits for it.
func (db *DB) Reserve(ctx context.Context) (*sqlx.Conn, error) {
	conn, err := db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("reserving connection: %w", err)
	}
	return conn, nil
}
