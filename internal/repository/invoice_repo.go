package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/andy/invoicer/internal/db"
	"github.com/andy/invoicer/internal/domain"
	"go.uber.org/zap"
)

// InvoiceRepo stores invoices as JSON documents in the invoices collection
type InvoiceRepo struct {
	db     db.KV
	logger *zap.Logger

	mu        sync.Mutex
	listeners map[int]func()
	nextID    int
}

// NewInvoiceRepo creates a new InvoiceRepo
func NewInvoiceRepo(kv db.KV, logger *zap.Logger) *InvoiceRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceRepo{
		db:        kv,
		logger:    logger,
		listeners: make(map[int]func()),
	}
}

// Save writes the whole invoice under its ID, replacing any previous version
func (r *InvoiceRepo) Save(ctx context.Context, invoice *domain.Invoice) error {
	if invoice == nil || invoice.ID == "" {
		return fmt.Errorf("invoice ID is required")
	}

	data, err := encodeInvoice(invoice)
	if err != nil {
		return err
	}

	err = update(ctx, r.db, func(tx *db.Tx) error {
		if err := tx.Put(db.CollectionInvoices, invoice.ID, data, createdAtIndex(invoice)); err != nil {
			return err
		}
		tx.AfterCommit(r.notify)
		return nil
	})
	if err != nil {
		return storeError("save invoice", err)
	}

	r.logger.Debug("invoice written",
		zap.String("id", invoice.ID),
		zap.String("number", invoice.InvoiceNumber),
	)
	return nil
}

// GetByID retrieves an invoice by ID
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	var invoice *domain.Invoice
	err := view(ctx, r.db, func(tx *db.Tx) error {
		data, err := tx.Get(db.CollectionInvoices, id)
		if err != nil {
			return err
		}
		invoice, err = decodeInvoice(data)
		return err
	})
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, storeError("get invoice", err)
	}
	return invoice, nil
}

// ListRecent returns up to limit invoices, newest first. A limit of zero
// or less returns every invoice.
func (r *InvoiceRepo) ListRecent(ctx context.Context, limit int) ([]*domain.Invoice, error) {
	invoices := make([]*domain.Invoice, 0)
	err := view(ctx, r.db, func(tx *db.Tx) error {
		return tx.IterateByIndex(db.CollectionInvoices, true, limit, func(key string, value []byte) error {
			invoice, err := decodeInvoice(value)
			if err != nil {
				return fmt.Errorf("invoice %s: %w", key, err)
			}
			invoices = append(invoices, invoice)
			return nil
		})
	})
	if err != nil {
		return nil, storeError("list invoices", err)
	}
	return invoices, nil
}

// Delete removes an invoice. Deleting a missing invoice is a no-op.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	err := update(ctx, r.db, func(tx *db.Tx) error {
		if err := tx.Delete(db.CollectionInvoices, id); err != nil {
			return err
		}
		tx.AfterCommit(r.notify)
		return nil
	})
	if err != nil {
		return storeError("delete invoice", err)
	}
	return nil
}

// DeleteAll removes every invoice document. Counters are left alone so
// numbers are never reused.
func (r *InvoiceRepo) DeleteAll(ctx context.Context) (int64, error) {
	var n int64
	err := update(ctx, r.db, func(tx *db.Tx) error {
		var err error
		if n, err = tx.DeleteAll(db.CollectionInvoices); err != nil {
			return err
		}
		tx.AfterCommit(r.notify)
		return nil
	})
	if err != nil {
		return 0, storeError("delete invoices", err)
	}
	return n, nil
}

func (r *InvoiceRepo) Subscribe(fn func()) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// notify calls every listener on the committing goroutine. The lock is not
// held while listeners run, so they may subscribe, unsubscribe or read.
func (r *InvoiceRepo) notify() {
	r.mu.Lock()
	listeners := make([]func(), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
