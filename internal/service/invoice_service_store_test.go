package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/andy/invoicer/internal/db"
	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// failingSaveRepo fails every Save after the number has been drawn
type failingSaveRepo struct {
	repository.InvoiceRepository
	fail bool
}

func (r *failingSaveRepo) Save(ctx context.Context, invoice *domain.Invoice) error {
	if r.fail {
		return errors.New("write rejected")
	}
	return r.InvoiceRepository.Save(ctx, invoice)
}

func newStoreBackedService(t *testing.T) (*invoiceService, *failingSaveRepo, *repository.CounterRepo) {
	t.Helper()
	logger := zaptest.NewLogger(t)

	database, err := db.Open(filepath.Join(t.TempDir(), "invoicer.db"), "secret", logger)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations())
	t.Cleanup(func() { database.Close() })

	invoices := &failingSaveRepo{InvoiceRepository: repository.NewInvoiceRepo(database, logger)}
	counters := repository.NewCounterRepo(database)

	svc := NewInvoiceService(
		repository.NewTxManager(database),
		invoices,
		NewNumberSequence(counters, fixedClock(2025)),
		&fakeRenderer{},
		&fakeLedger{},
		Defaults{},
		logger,
	).(*invoiceService)
	svc.now = fixedClock(2025)

	return svc, invoices, counters
}

func TestSave_FailedWriteConsumesNoNumber(t *testing.T) {
	ctx := context.Background()
	svc, invoices, counters := newStoreBackedService(t)

	calls := 0
	svc.Subscribe(func() { calls++ })

	invoices.fail = true
	_, err := svc.Save(ctx, readyToSave(t, svc, domain.PresetIndiaGST))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))

	count, err := counters.Get(ctx, "2025-GST")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, calls)

	invoices.fail = false
	saved, err := svc.Save(ctx, readyToSave(t, svc, domain.PresetIndiaGST))
	require.NoError(t, err)
	assert.Equal(t, "2025-GST-0001", saved.InvoiceNumber)
	assert.Equal(t, 1, calls)
}

func TestSave_ConcurrentSavesGetDistinctNumbers(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newStoreBackedService(t)

	drafts := make([]*domain.Invoice, 10)
	for i := range drafts {
		drafts[i] = readyToSave(t, svc, domain.PresetUKVAT)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[string]bool)
	)
	for _, draft := range drafts {
		wg.Add(1)
		go func(draft *domain.Invoice) {
			defer wg.Done()
			saved, err := svc.Save(ctx, draft)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			numbers[saved.InvoiceNumber] = true
			mu.Unlock()
		}(draft)
	}
	wg.Wait()

	assert.Len(t, numbers, len(drafts))
	assert.True(t, numbers["2025-VAT-0001"])
	assert.True(t, numbers["2025-VAT-0010"])
}

func TestListRecent_ThroughStore(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newStoreBackedService(t)

	var ids []string
	for i := 0; i < 7; i++ {
		draft := readyToSave(t, svc, domain.PresetNoTax)
		draft.CreatedAt = draft.CreatedAt.AddDate(0, 0, i)
		saved, err := svc.Save(ctx, draft)
		require.NoError(t, err)
		ids = append(ids, saved.ID)
	}

	recent, err := svc.ListRecent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	for i := 1; i < len(recent); i++ {
		assert.True(t, recent[i-1].CreatedAt.After(recent[i].CreatedAt))
	}
	assert.Equal(t, ids[6], recent[0].ID)
}

func TestSave_DoubleSubmitThroughStore(t *testing.T) {
	ctx := context.Background()
	svc, _, counters := newStoreBackedService(t)
	draft := readyToSave(t, svc, domain.PresetIndiaGST)

	first, err := svc.Save(ctx, draft)
	require.NoError(t, err)
	second, err := svc.Save(ctx, draft)
	require.NoError(t, err)
	assert.Equal(t, first.InvoiceNumber, second.InvoiceNumber)

	count, err := counters.Get(ctx, "2025-GST")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := svc.Open(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-GST-0001", stored.InvoiceNumber)
}
