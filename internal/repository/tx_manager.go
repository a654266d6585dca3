package repository

import (
	"context"

	"github.com/andy/invoicer/internal/db"
)

type txKey struct{}

type txManager struct {
	db db.KV
}

func NewTxManager(kv db.KV) TxManager {
	return &txManager{db: kv}
}

// RunInTx starts a read-write transaction unless ctx already carries one,
// in which case fn simply joins it. Errors from fn are returned as is;
// failures to begin or commit wrap domain.ErrStoreUnavailable.
func (m *txManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	var fnErr error
	err := m.db.Update(ctx, func(tx *db.Tx) error {
		fnErr = fn(context.WithValue(ctx, txKey{}, tx))
		return fnErr
	})
	if err != nil && err != fnErr {
		return storeError("run transaction", err)
	}
	return err
}

func txFromContext(ctx context.Context) (*db.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*db.Tx)
	return tx, ok
}

// update runs fn in the transaction carried by ctx, or in a new one.
// The pool holds a single connection, so opening a second transaction
// while one is in flight on the same goroutine would block forever.
func update(ctx context.Context, kv db.KV, fn func(tx *db.Tx) error) error {
	if tx, ok := txFromContext(ctx); ok {
		return fn(tx)
	}
	return kv.Update(ctx, fn)
}

// view is the read-only counterpart of update
func view(ctx context.Context, kv db.KV, fn func(tx *db.Tx) error) error {
	if tx, ok := txFromContext(ctx); ok {
		return fn(tx)
	}
	return kv.View(ctx, fn)
}
