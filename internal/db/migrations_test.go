package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRunMigrations_FreshDatabase(t *testing.T) {
	database := openTestDB(t)

	require.NoError(t, database.RunMigrations())

	version, err := database.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, LatestSchemaVersion(), version)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	database := openTestDB(t)

	require.NoError(t, database.RunMigrations())
	require.NoError(t, database.RunMigrations())

	var rows int
	require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&rows))
	assert.Equal(t, len(migrations), rows)
}

func TestRunMigrations_UpgradeKeepsDocuments(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	// a database written before counters existed
	require.NoError(t, database.migrateTo(1))
	version, err := database.SchemaVersion()
	require.NoError(t, err)
	require.Equal(t, 1, version)

	require.NoError(t, database.Update(ctx, func(tx *Tx) error {
		return tx.Put(CollectionInvoices, "old", []byte(`{"id":"old"}`), 42)
	}))

	err = database.Update(ctx, func(tx *Tx) error {
		return tx.Put(CollectionInvoiceCounters, "2026-GST", []byte("1"), 0)
	})
	require.Error(t, err, "counter table must not exist before migration 2")

	require.NoError(t, database.RunMigrations())

	require.NoError(t, database.View(ctx, func(tx *Tx) error {
		got, err := tx.Get(CollectionInvoices, "old")
		require.NoError(t, err)
		assert.Equal(t, `{"id":"old"}`, string(got))

		_, err = tx.Get(CollectionInvoiceCounters, "2026-GST")
		assert.ErrorIs(t, err, ErrKeyNotFound)
		return nil
	}))
}

func TestOpen_WrongKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enc.db")

	database, err := Open(path, "right", zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations())
	require.NoError(t, database.Close())

	_, err = Open(path, "wrong", zaptest.NewLogger(t))
	assert.ErrorIs(t, err, ErrWrongKey)

	reopened, err := Open(path, "right", zaptest.NewLogger(t))
	require.NoError(t, err)
	defer reopened.Close()
	version, err := reopened.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, LatestSchemaVersion(), version)
}

func TestOpen_FileIsEncrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "enc.db")

	database, err := Open(path, `pa"ss`, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations())
	require.NoError(t, database.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 16)
	assert.NotEqual(t, "SQLite format 3\x00", string(data[:16]))

	reopened, err := Open(path, `pa"ss`, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, reopened.Close())
}
