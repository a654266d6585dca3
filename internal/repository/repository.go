package repository

import (
	"context"

	"github.com/andy/invoicer/internal/domain"
)

// TxManager runs a function inside one store transaction. Repositories
// called with the context passed to fn join that transaction.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// InvoiceRepository manages invoice documents
type InvoiceRepository interface {
	Save(ctx context.Context, invoice *domain.Invoice) error // Whole-document upsert by ID
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Invoice, error) // Newest CreatedAt first
	Delete(ctx context.Context, id string) error                          // Missing ids are not an error
	DeleteAll(ctx context.Context) (int64, error)

	// Subscribe registers fn to be called after every committed change.
	// The returned function removes it and may be called more than once.
	Subscribe(fn func()) (unsubscribe func())
}

// CounterRepository manages the numbering counters
type CounterRepository interface {
	// Increment adds one to the counter under key and returns the new value.
	// A missing counter starts at zero.
	Increment(ctx context.Context, key string) (int, error)
	Get(ctx context.Context, key string) (int, error) // Returns 0 if the counter does not exist
}
