package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Collections stored in the database. Each maps to one table with the
// shape (key, idx, value).
const (
	CollectionInvoices        = "invoices"
	CollectionInvoiceCounters = "invoice-counters"
)

var collectionTables = map[string]string{
	CollectionInvoices:        "invoices",
	CollectionInvoiceCounters: "invoice_counters",
}

var (
	ErrKeyNotFound       = errors.New("key not found")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrReadOnlyTx        = errors.New("write in read-only transaction")
)

// KV is a transactional key-value store of opaque documents with one
// integer secondary index per collection.
type KV interface {
	// View runs fn in a read-only transaction
	View(ctx context.Context, fn func(tx *Tx) error) error
	// Update runs fn in a read-write transaction. If fn returns an error or
	// panics nothing is written.
	Update(ctx context.Context, fn func(tx *Tx) error) error
}

var _ KV = (*DB)(nil)

// Tx is a single store transaction. It must not be used after the function
// passed to View or Update returns.
type Tx struct {
	ctx         context.Context
	tx          *sql.Tx
	writable    bool
	afterCommit []func()
}

func (db *DB) View(ctx context.Context, fn func(tx *Tx) error) error {
	return db.withTx(ctx, false, fn)
}

func (db *DB) Update(ctx context.Context, fn func(tx *Tx) error) error {
	return db.withTx(ctx, true, fn)
}

func (db *DB) withTx(ctx context.Context, writable bool, fn func(tx *Tx) error) error {
	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.logger.Error("failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	tx := &Tx{ctx: ctx, tx: sqlTx, writable: writable}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			db.logger.Error("failed to rollback transaction", zap.Error(rbErr))
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		db.logger.Error("failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	// The connection is back in the pool here, so hooks may open new
	// transactions of their own.
	for _, hook := range tx.afterCommit {
		hook()
	}

	return nil
}

// Writable reports whether the transaction was started by Update
func (t *Tx) Writable() bool {
	return t.writable
}

// AfterCommit registers fn to run once the transaction has committed.
// Hooks are dropped when the transaction rolls back.
func (t *Tx) AfterCommit(fn func()) {
	t.afterCommit = append(t.afterCommit, fn)
}

func tableFor(collection string) (string, error) {
	table, ok := collectionTables[collection]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, collection)
	}
	return table, nil
}

// Get returns the stored value, or ErrKeyNotFound
func (t *Tx) Get(collection, key string) ([]byte, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	var value []byte
	err = t.tx.QueryRowContext(t.ctx, "SELECT value FROM "+table+" WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, key, err)
	}
	return value, nil
}

// Put inserts or replaces the value stored under key
func (t *Tx) Put(collection, key string, value []byte, index int64) error {
	if !t.writable {
		return ErrReadOnlyTx
	}
	table, err := tableFor(collection)
	if err != nil {
		return err
	}

	_, err = t.tx.ExecContext(t.ctx,
		"INSERT OR REPLACE INTO "+table+" (key, idx, value) VALUES (?, ?, ?)",
		key, index, value,
	)
	if err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", collection, key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (t *Tx) Delete(collection, key string) error {
	if !t.writable {
		return ErrReadOnlyTx
	}
	table, err := tableFor(collection)
	if err != nil {
		return err
	}

	if _, err := t.tx.ExecContext(t.ctx, "DELETE FROM "+table+" WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, key, err)
	}
	return nil
}

// DeleteAll empties a collection and returns the number of removed keys
func (t *Tx) DeleteAll(collection string) (int64, error) {
	if !t.writable {
		return 0, ErrReadOnlyTx
	}
	table, err := tableFor(collection)
	if err != nil {
		return 0, err
	}

	res, err := t.tx.ExecContext(t.ctx, "DELETE FROM "+table)
	if err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", collection, err)
	}
	return res.RowsAffected()
}

// IterateByIndex calls fn for each entry ordered by the secondary index,
// ties broken by key. A limit of zero or less means no limit. Iteration
// stops at the first error returned by fn.
func (t *Tx) IterateByIndex(collection string, desc bool, limit int, fn func(key string, value []byte) error) error {
	table, err := tableFor(collection)
	if err != nil {
		return err
	}

	order := "ASC"
	if desc {
		order = "DESC"
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := t.tx.QueryContext(t.ctx,
		fmt.Sprintf("SELECT key, value FROM %s ORDER BY idx %s, key %s LIMIT ?", table, order, order),
		limit,
	)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", collection, err)
	}

	type entry struct {
		key   string
		value []byte
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.key, &e.value); err != nil {
			rows.Close()
			return fmt.Errorf("failed to read %s row: %w", collection, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("failed to iterate %s: %w", collection, err)
	}
	rows.Close()

	// fn runs after the cursor is closed so it may issue queries on the tx
	for _, e := range entries {
		if err := fn(e.key, e.value); err != nil {
			return err
		}
	}
	return nil
}
