package db

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mutecomm/go-sqlcipher/v4"
	"go.uber.org/zap"
)

// ErrWrongKey is returned by Open when the file cannot be decrypted
var ErrWrongKey = errors.New("database key is wrong or file is not a database")

// busyTimeoutMillis is how long a connection waits on a locked database file
// before giving up with SQLITE_BUSY
const busyTimeoutMillis = 5000

type DB struct {
	*sql.DB
	logger *zap.Logger
}

// Open opens an encrypted SQLite database with the given password.
// dbPath is the full path to the database file.
//
// The pool is limited to one connection, so transactions issued by this
// process run one after another.
func Open(dbPath, password string, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Create parent directories if they don't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Encryption key plus locking behaviour for every connection. The driver
	// splices the key into a double-quoted PRAGMA, so quotes are doubled.
	params := url.Values{}
	params.Set("_pragma_key", strings.ReplaceAll(password, `"`, `""`))
	params.Set("_busy_timeout", fmt.Sprint(busyTimeoutMillis))
	params.Set("_txlock", "immediate")
	connStr := fmt.Sprintf("%s?%s", dbPath, params.Encode())

	sqlDB, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	// SQLCipher only checks the key when a page is read
	if err := verifyKey(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	// Enable WAL mode so a crashed write never corrupts committed documents
	if _, err := sqlDB.Exec("PRAGMA journal_mode = WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Debug("database opened", zap.String("path", dbPath))
	return &DB{DB: sqlDB, logger: logger}, nil
}

func verifyKey(sqlDB *sql.DB) error {
	var n int
	if err := sqlDB.QueryRow("SELECT count(*) FROM sqlite_master").Scan(&n); err != nil {
		return fmt.Errorf("%w: %w", ErrWrongKey, err)
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	db.logger.Debug("closing database")
	return db.DB.Close()
}
