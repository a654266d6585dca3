package tui

import (
	"context"
	"fmt"
	"sort"

	"github.com/andy/invoicer/internal/app"
	"github.com/andy/invoicer/internal/config"
	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

// fakeInvoiceService keeps invoices in memory. Methods the screens never
// call fall through to the nil embedded interface.
type fakeInvoiceService struct {
	service.InvoiceService

	invoices  map[string]*domain.Invoice
	listeners map[int]func()
	nextID    int
	numbered  int
	deleted   []string
}

func newFakeInvoiceService() *fakeInvoiceService {
	return &fakeInvoiceService{
		invoices:  make(map[string]*domain.Invoice),
		listeners: make(map[int]func()),
	}
}

func (f *fakeInvoiceService) notify() {
	for _, fn := range f.listeners {
		fn()
	}
}

func (f *fakeInvoiceService) Create(presetKey string) (*domain.Invoice, error) {
	p, err := domain.GetPreset(presetKey)
	if err != nil {
		return nil, err
	}
	return domain.NewInvoice(p), nil
}

func (f *fakeInvoiceService) Edit(inv *domain.Invoice, edits ...domain.Edit) *domain.Invoice {
	return domain.ApplyEdit(inv, edits...)
}

func (f *fakeInvoiceService) Save(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	if err := domain.Validate(inv).Err(); err != nil {
		return nil, err
	}
	saved := inv.Clone()
	if !saved.IsSaved() {
		f.numbered++
		saved.InvoiceNumber = fmt.Sprintf("2026-GST-%04d", f.numbered)
	}
	f.invoices[saved.ID] = saved
	f.notify()
	return saved.Clone(), nil
}

func (f *fakeInvoiceService) Delete(ctx context.Context, id string) error {
	delete(f.invoices, id)
	f.deleted = append(f.deleted, id)
	f.notify()
	return nil
}

func (f *fakeInvoiceService) ListRecent(ctx context.Context, limit int) ([]*domain.Invoice, error) {
	out := make([]*domain.Invoice, 0, len(f.invoices))
	for _, inv := range f.invoices {
		out = append(out, inv.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeInvoiceService) Subscribe(fn func()) func() {
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	return func() { delete(f.listeners, id) }
}

func newTestApp(svc *fakeInvoiceService) *app.App {
	return &app.App{
		Config:         config.DefaultConfig(),
		InvoiceService: svc,
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
