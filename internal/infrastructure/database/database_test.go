package database

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestOpen verifies database connection establishment.
func TestOpen(t *testing.T) {
	t.Run("creates database file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test.db")

		db, err := Open(Config{
			Path:        dbPath,
			WALMode:     true,
			BusyTimeout: 5,
		})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "no", "such", "dir")

		_, err := Open(Config{Path: filepath.Join(dir, "test.db"), BusyTimeout: 5})
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Open() error = %v, want fs.ErrNotExist", err)
		}
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Error("Open() created the missing directory")
		}
	})

	t.Run("uri characters in file name", func(t *testing.T) {
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "we?ird#name%20.db")

		db, err := Open(Config{Path: dbPath, WALMode: true, BusyTimeout: 5})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if _, err := db.Exec("CREATE TABLE t (a)"); err != nil {
			t.Fatalf("CREATE TABLE error = %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("ReadDir() error = %v", err)
		}
		found := false
		for _, e := range entries {
			if e.Name() == "we" {
				t.Errorf("file name was cut at '?': %s", e.Name())
			}
			if e.Name() == "we?ird#name%20.db" {
				found = true
			}
		}
		if !found {
			t.Errorf("database file %q not created", dbPath)
		}
	})

	t.Run("returns path", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test.db")

		db, err := Open(Config{Path: dbPath, BusyTimeout: 5})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if db.Path() != dbPath {
			t.Errorf("Path() = %v, want %v", db.Path(), dbPath)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := Open(Config{})
		if !errors.Is(err, ErrEmptyPath) {
			t.Errorf("Open() error = %v, want ErrEmptyPath", err)
		}
	})

	t.Run("inaccessible path", func(t *testing.T) {
		// A regular file cannot act as the parent directory.
		blocker := filepath.Join(t.TempDir(), "blocker")
		if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
			t.Fatalf("writing blocker file: %v", err)
		}

		_, err := Open(Config{Path: filepath.Join(blocker, "test.db")})
		if !errors.Is(err, ErrNotDirectory) {
			t.Errorf("Open() error = %v, want ErrNotDirectory", err)
		}
	})
}

// TestHealthCheck verifies the health check functionality.
func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

// TestClose verifies graceful shutdown.
func TestClose(t *testing.T) {
	db := openTestDB(t)

	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	// Second close should not error (nil check)
	db.DB = nil
	if err := db.Close(); err != nil {
		t.Errorf("Close() on nil DB error = %v", err)
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "absolute path",
			cfg:  Config{Path: "/var/lib/app.db", BusyTimeout: 5},
			want: "file:/var/lib/app.db?_busy_timeout=5000",
		},
		{
			name: "relative path with wal",
			cfg:  Config{Path: "data/app.db", WALMode: true, BusyTimeout: 1},
			want: "file:data/app.db?_busy_timeout=1000&_journal_mode=WAL&_synchronous=NORMAL",
		},
		{
			name: "reserved characters",
			cfg:  Config{Path: "/tmp/we?ird#1%.db"},
			want: "file:/tmp/we%3Fird%231%25.db?_busy_timeout=0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dsn(tt.cfg); got != tt.want {
				t.Errorf("dsn() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestForeignKeysOff(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	var enabled int
	if err := db.Get(&enabled, "PRAGMA foreign_keys"); err != nil {
		t.Fatalf("PRAGMA foreign_keys error = %v", err)
	}
	if enabled != 0 {
		t.Errorf("foreign_keys = %d, want 0", enabled)
	}
}

// TestReserve verifies the reserved connection holds the only pool slot.
func TestReserve(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	ctx := context.Background()
	conn, err := db.Reserve(ctx)
	if err != nil {
		t.Fatalf("Reserve() error = %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := db.HealthCheck(waitCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("HealthCheck() while reserved error = %v, want deadline exceeded", err)
	}

	if err := conn.Close(); err != nil {
		t.Fatalf("Conn.Close() error = %v", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() after release error = %v", err)
	}
}

// TestSingleConnection verifies the pool is pinned to one connection.
func TestSingleConnection(t *testing.T) {
	db := openTestDB(t)
	defer db.Close() //nolint:errcheck // Test cleanup

	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %v, want 1", got)
	}
}

// openTestDB creates a temporary database for testing.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	return db
}
