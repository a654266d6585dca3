package service

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/andy/invoicer/internal/domain"
)

// fake implementations

type fakeTxManager struct {
	calls int
}

func (m *fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type fakeInvoiceRepo struct {
	invoices  map[string]*domain.Invoice
	listeners map[int]func()
	nextID    int
	saveErr   error
	saves     int
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		invoices:  make(map[string]*domain.Invoice),
		listeners: make(map[int]func()),
	}
}

func (m *fakeInvoiceRepo) notify() {
	for _, fn := range m.listeners {
		fn()
	}
}

func (m *fakeInvoiceRepo) Save(ctx context.Context, invoice *domain.Invoice) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.invoices[invoice.ID] = invoice.Clone()
	m.notify()
	return nil
}

func (m *fakeInvoiceRepo) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	if inv, ok := m.invoices[id]; ok {
		return inv.Clone(), nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
}

func (m *fakeInvoiceRepo) ListRecent(ctx context.Context, limit int) ([]*domain.Invoice, error) {
	out := make([]*domain.Invoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		out = append(out, inv.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *fakeInvoiceRepo) Delete(ctx context.Context, id string) error {
	delete(m.invoices, id)
	m.notify()
	return nil
}

func (m *fakeInvoiceRepo) DeleteAll(ctx context.Context) (int64, error) {
	n := int64(len(m.invoices))
	m.invoices = make(map[string]*domain.Invoice)
	m.notify()
	return n, nil
}

func (m *fakeInvoiceRepo) Subscribe(fn func()) func() {
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() { delete(m.listeners, id) }
}

type fakeCounterRepo struct {
	counts map[string]int
	err    error
}

func newFakeCounterRepo() *fakeCounterRepo {
	return &fakeCounterRepo{counts: make(map[string]int)}
}

func (m *fakeCounterRepo) Increment(ctx context.Context, key string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.counts[key]++
	return m.counts[key], nil
}

func (m *fakeCounterRepo) Get(ctx context.Context, key string) (int, error) {
	return m.counts[key], m.err
}

type fakeRenderer struct {
	rendered []*domain.Invoice
}

func (m *fakeRenderer) Render(invoice *domain.Invoice) ([]byte, error) {
	m.rendered = append(m.rendered, invoice)
	return []byte("%PDF-fake " + invoice.InvoiceNumber), nil
}

type fakeLedger struct {
	written []*domain.Invoice
}

func (m *fakeLedger) WriteLedger(w io.Writer, invoices []*domain.Invoice) error {
	m.written = invoices
	_, err := io.WriteString(w, fmt.Sprintf("%d rows", len(invoices)))
	return err
}
