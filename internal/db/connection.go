package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

var (
	// dbPool is the singleton database connection pool
	dbPool *sql.DB
	// dbOnce ensures the pool is created only once
	dbOnce sync.Once
	// dbErr stores any error from pool creation
	dbErr error
)

// schema holds the tables newsreel needs; safe to run on every open
const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key       TEXT PRIMARY KEY,
	payload   BLOB NOT NULL,
	stored_at INTEGER NOT NULL
);`

// GetDB returns the singleton database connection pool.
// The first call creates the database file and schema if needed.
func GetDB() (*sql.DB, error) {
	dbOnce.Do(func() {
		dbPath, err := getDBPath()
		if err != nil {
			dbErr = fmt.Errorf("failed to get database path: %w", err)
			return
		}

		// The XDG data directory may not exist on a fresh install
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			dbErr = fmt.Errorf("failed to create database directory: %w", err)
			return
		}

		// Open connection pool (doesn't actually connect yet)
		dbPool, err = sql.Open("sqlite3", dbPath)
		if err != nil {
			dbErr = fmt.Errorf("failed to open database: %w", err)
			return
		}

		// Pool sizing: the cache does one read per load and one write per fetch,
		// so a handful of idle connections covers the TUI and -print together
		dbPool.SetMaxOpenConns(25)   // Upper bound on concurrent connections
		dbPool.SetMaxIdleConns(5)    // Kept warm between fetches
		dbPool.SetConnMaxLifetime(0) // Never recycled; the file is local

		// WAL lets a reader see the last committed entry while a refresh writes.
		// busy_timeout makes a second process wait up to 5s on a lock instead of
		// failing with SQLITE_BUSY.
		for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
			if _, err := dbPool.Exec(pragma); err != nil {
				dbErr = fmt.Errorf("failed to apply %q: %w", pragma, err)
				// Don't hand out a pool with the wrong journal mode
				dbPool.Close()
				dbPool = nil
				return
			}
		}

		if _, err := dbPool.Exec(schema); err != nil {
			dbErr = fmt.Errorf("failed to create schema: %w", err)
			// Without the table every cache call would fail later and less clearly
			dbPool.Close()
			dbPool = nil
			return
		}

		// sql.Open is lazy; Ping proves the file is actually usable
		if err := dbPool.Ping(); err != nil {
			dbErr = fmt.Errorf("failed to ping database: %w", err)
			dbPool.Close()
			dbPool = nil
			return
		}
	})

	if dbErr != nil {
		return nil, dbErr
	}

	return dbPool, nil
}

// CloseDB closes the singleton database connection pool.
// A later GetDB call opens a fresh pool.
func CloseDB() error {
	var err error
	if dbPool != nil {
		err = dbPool.Close()
		dbPool = nil
	}
	// Clear a failed open too, so SetPath followed by GetDB can recover
	dbErr = nil
	// Reset the once so a new pool can be created
	dbOnce = sync.Once{}
	return err
}

// dbPathFunc is a variable holding the function to get DB path (for testing)
var dbPathFunc = getDefaultDBPath

// SetPath points the pool at an explicit database file.
// It must be called before the first GetDB.
func SetPath(path string) {
	if path == "" {
		dbPathFunc = getDefaultDBPath
		return
	}
	dbPathFunc = func() (string, error) { return path, nil }
}

func getDBPath() (string, error) {
	return dbPathFunc()
}

// getDefaultDBPath returns the default path to the SQLite database
func getDefaultDBPath() (string, error) {
	xdgDataHome := os.Getenv("XDG_DATA_HOME")
	if xdgDataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		xdgDataHome = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(xdgDataHome, "newsreel", "newsreel.db"), nil
}
