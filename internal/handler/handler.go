package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nerrad567/dbhandler/internal/infrastructure/config"
	"github.com/nerrad567/dbhandler/internal/infrastructure/database"
	"github.com/nerrad567/dbhandler/internal/infrastructure/logging"
)

// Handler owns one SQLite database handle, a registry of the tables the
// caller considers in use, and the helpers that turn structured arguments
// into SQL text.
//
// Failures of individual statements are caught, logged at critical level
// and swallowed: callers receive empty or partial results. Use Query when
// the error itself is needed.
//
// Thread Safety:
//   - A Handler has a single owner. Methods are not safe for concurrent use.
type Handler struct {
	cfg  database.Config
	db   *database.DB
	conn *sqlx.Conn

	// pending is set by the handler's own BEGIN. Drivers that report their
	// autocommit state override it.
	pending bool

	tables    map[string][]string
	log       *logging.Logger
	observers []Observer
}

// New creates a Handler for the database described by cfg. The database is
// not opened until Open is called. Observers are notified after every
// statement in the order given.
func New(cfg database.Config, log *logging.Logger, observers ...Observer) *Handler {
	if log == nil {
		log = logging.Default()
	}
	return &Handler{
		cfg:       cfg,
		tables:    make(map[string][]string),
		log:       log,
		observers: observers,
	}
}

// Open establishes the database handle and reserves its connection.
//
// Returns:
//   - error: ErrAlreadyOpen, or the failure to open the configured path
func (h *Handler) Open() error {
	if h.db != nil {
		return ErrAlreadyOpen
	}

	db, err := database.Open(h.cfg)
	if err != nil {
		return err
	}
	conn, err := db.Reserve(context.Background())
	if err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return err
	}

	h.db, h.conn, h.pending = db, conn, false
	h.log.Info("DB is opened: " + db.Path())
	return nil
}

// Close releases the database handle. Writes that were not committed are
// rolled back.
func (h *Handler) Close() error {
	if h.db == nil {
		return ErrNotOpen
	}

	var rollbackErr error
	if h.inTransaction() {
		if _, err := h.conn.ExecContext(context.Background(), "ROLLBACK"); err != nil {
			rollbackErr = fmt.Errorf("rolling back pending writes: %w", err)
		}
	}

	path := h.db.Path()
	connErr := h.conn.Close()
	if errors.Is(connErr, sql.ErrConnDone) {
		connErr = nil
	}
	closeErr := h.db.Close()
	h.db, h.conn, h.pending = nil, nil, false
	if err := errors.Join(rollbackErr, connErr, closeErr); err != nil {
		return err
	}

	h.log.Info("DB is closed: " + path)
	return nil
}

// Commit persists pending writes. It is a no-op when no transaction is
// active, including after the statements themselves ran COMMIT.
// Driver errors are returned, not logged.
func (h *Handler) Commit() error {
	if h.db == nil {
		return ErrNotOpen
	}
	if !h.inTransaction() {
		h.pending = false
		return nil
	}

	_, err := h.conn.ExecContext(context.Background(), "COMMIT")
	h.pending = false
	if err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// ExecuteQuery runs raw SQL text and returns every result row.
//
// Any failure is logged through the Log Sink's error adapter and an empty
// slice is returned, so "no rows" and "failed" look the same to the caller.
func (h *Handler) ExecuteQuery(ctx context.Context, query string) []Row {
	rows, err := h.Query(ctx, query)
	if err != nil {
		h.log.ExceptionHandling(err)
		return []Row{}
	}

	h.log.Info("Executed query: " + query)
	return rows
}

// Query runs raw SQL text and returns the result rows or the driver error.
// Statements run inside the pending transaction, which is started on demand
// and ended by Commit or Close.
func (h *Handler) Query(ctx context.Context, query string) ([]Row, error) {
	start := time.Now()
	rows, err := h.run(ctx, query)

	h.notify(ctx, Execution{
		Database:  filepath.Base(h.cfg.Path),
		Statement: query,
		Kind:      statementKind(query),
		Rows:      len(rows),
		Duration:  time.Since(start),
		Err:       err,
		At:        start,
	})

	return rows, err
}

func (h *Handler) run(ctx context.Context, query string) ([]Row, error) {
	if h.db == nil {
		return nil, ErrNotOpen
	}

	// Only data-modifying statements open a transaction implicitly. Other
	// statements run as they are, so VACUUM or an explicit BEGIN work.
	if opensTransaction(statementKind(query)) && !h.inTransaction() {
		// The transaction outlives this call; only Commit or Close end it.
		if _, err := h.conn.ExecContext(context.WithoutCancel(ctx), "BEGIN"); err != nil {
			return nil, fmt.Errorf("starting transaction: %w", err)
		}
		h.pending = true
	}

	rs, err := h.conn.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rs.Close() //nolint:errcheck // Read-only cleanup

	rows := []Row{}
	for rs.Next() {
		values, err := rs.SliceScan()
		if err != nil {
			return nil, err
		}
		rows = append(rows, values)
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}

	return rows, nil
}

// autoCommitter is implemented by go-sqlite3 connections.
type autoCommitter interface {
	AutoCommit() bool
}

// inTransaction reports whether the reserved connection has an open
// transaction, whoever started it.
func (h *Handler) inTransaction() bool {
	active := h.pending
	//nolint:errcheck // Raw fails only on a closed connection; pending stands
	h.conn.Raw(func(driverConn any) error {
		if ac, ok := driverConn.(autoCommitter); ok {
			active = !ac.AutoCommit()
		}
		return nil
	})
	return active
}

func (h *Handler) notify(ctx context.Context, e Execution) {
	for _, o := range h.observers {
		o.ObserveStatement(ctx, e)
	}
}

// TableColumns returns the column names of table in schema order, as
// reported by PRAGMA table_info. A table that does not exist yields an
// empty list.
func (h *Handler) TableColumns(ctx context.Context, table string) []string {
	rows := h.ExecuteQuery(ctx, "PRAGMA table_info('"+table+"')")

	columns := make([]string, 0, len(rows))
	for _, row := range rows {
		// cid, name, type, notnull, dflt_value, pk
		if len(row) > 1 {
			columns = append(columns, text(row[1]))
		}
	}

	h.log.Debug("Table columns: " + strings.Join(columns, ", "))
	return columns
}

// SetUsedTable introspects table and records its columns in the registry.
func (h *Handler) SetUsedTable(ctx context.Context, table string) {
	h.tables[table] = h.TableColumns(ctx, table)
	h.log.Info("New table is set to used: " + table)
}

// ReleaseUsedTable removes table from the registry.
//
// Returns:
//   - error: ErrTableNotRegistered if table was never set or already released
func (h *Handler) ReleaseUsedTable(table string) error {
	if _, ok := h.tables[table]; !ok {
		return fmt.Errorf("%w: %s", ErrTableNotRegistered, table)
	}

	delete(h.tables, table)
	h.log.Info("Table is released from used tables: " + table)
	return nil
}

// ClearUsedTables empties the registry.
func (h *Handler) ClearUsedTables() {
	clear(h.tables)
	h.log.Info("All tables are released from used tables")
}

// UsedTables returns a copy of the registry.
func (h *Handler) UsedTables() map[string][]string {
	out := make(map[string][]string, len(h.tables))
	for table, columns := range h.tables {
		out[table] = slices.Clone(columns)
	}
	return out
}

// debugging reports whether debug lines are printed at all, so callers can
// skip formatting them.
func (h *Handler) debugging() bool {
	return h.log.Level() == config.LevelDebug
}

// text renders a driver value for log lines and column names.
func text(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case nil:
		return "NULL"
	default:
		return fmt.Sprint(val)
	}
}
