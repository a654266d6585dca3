package db

import (
	"fmt"

	"go.uber.org/zap"
)

type migration struct {
	version int
	sql     string
}

// Migrations only ever add tables or indexes. A database written by an older
// build opens unchanged under a newer one.
var migrations = []migration{
	{
		version: 1,
		sql: `
-- Invoice documents, secondary index holds creation time in unix nanoseconds
CREATE TABLE IF NOT EXISTS invoices (
    key TEXT PRIMARY KEY,
    idx INTEGER NOT NULL DEFAULT 0,
    value BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_invoices_created ON invoices(idx);
`,
	},
	{
		version: 2,
		sql: `
-- Numbering counters keyed by "<year>-<PREFIX>"
CREATE TABLE IF NOT EXISTS invoice_counters (
    key TEXT PRIMARY KEY,
    idx INTEGER NOT NULL DEFAULT 0,
    value BLOB NOT NULL
);
`,
	},
}

// LatestSchemaVersion is the version RunMigrations brings a database to
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// RunMigrations applies all pending database migrations
func (db *DB) RunMigrations() error {
	return db.migrateTo(LatestSchemaVersion())
}

// migrateTo applies pending migrations up to and including target
func (db *DB) migrateTo(target int) error {
	// Ensure schema_version table exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	currentVersion, err := db.SchemaVersion()
	if err != nil {
		return err
	}

	// Apply pending migrations in a transaction
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range migrations {
		if m.version <= currentVersion || m.version > target {
			continue
		}

		if _, err := tx.Exec(m.sql); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", m.version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}

		db.logger.Info("applied migration", zap.Int("version", m.version))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}

	return nil
}

// SchemaVersion returns the highest applied migration, 0 when none has run
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	return version, nil
}
