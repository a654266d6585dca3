package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/repository"
	"go.uber.org/zap"
)

// Renderer turns a saved invoice into a printable document
type Renderer interface {
	Render(invoice *domain.Invoice) ([]byte, error)
}

// LedgerWriter writes a spreadsheet summary of many invoices
type LedgerWriter interface {
	WriteLedger(w io.Writer, invoices []*domain.Invoice) error
}

// Defaults seed every new draft
type Defaults struct {
	Currency  domain.Currency
	Template  domain.TemplateKey
	Seller    domain.Party
	QREnabled bool
}

// InvoiceService manages the invoice lifecycle: create, edit, save, delete
// and duplicate.
type InvoiceService interface {
	// Create returns a fresh in-memory draft. Nothing is stored and no number
	// is assigned.
	Create(presetKey string) (*domain.Invoice, error)

	// Open loads a stored invoice
	Open(ctx context.Context, id string) (*domain.Invoice, error)

	// Edit applies edits to a copy of invoice and recomputes its totals
	Edit(invoice *domain.Invoice, edits ...domain.Edit) *domain.Invoice

	// AttachLogo checks data and returns a copy of invoice carrying it
	AttachLogo(invoice *domain.Invoice, data []byte) (*domain.Invoice, error)

	// Save validates and persists invoice, assigning a number the first time.
	// On failure nothing is written, no number is consumed and invoice is
	// left unchanged.
	Save(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error)

	// Delete removes a stored invoice; missing ids are ignored
	Delete(ctx context.Context, id string) error

	// Duplicate stores an unnumbered copy of a stored invoice
	Duplicate(ctx context.Context, id string) (*domain.Invoice, error)

	ListRecent(ctx context.Context, limit int) ([]*domain.Invoice, error)

	// Subscribe registers fn for change notifications after every commit
	Subscribe(fn func()) (unsubscribe func())

	// Render produces the PDF of a saved invoice
	Render(ctx context.Context, id string) ([]byte, error)

	// ExportLedger writes every numbered invoice to w as a spreadsheet
	ExportLedger(ctx context.Context, w io.Writer) error
}

type invoiceService struct {
	txm         repository.TxManager
	invoiceRepo repository.InvoiceRepository
	numbers     NumberSequence
	renderer    Renderer
	ledger      LedgerWriter
	defaults    Defaults
	logger      *zap.Logger
	now         func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	txm repository.TxManager,
	invoiceRepo repository.InvoiceRepository,
	numbers NumberSequence,
	renderer Renderer,
	ledger LedgerWriter,
	defaults Defaults,
	logger *zap.Logger,
) InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &invoiceService{
		txm:         txm,
		invoiceRepo: invoiceRepo,
		numbers:     numbers,
		renderer:    renderer,
		ledger:      ledger,
		defaults:    defaults,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *invoiceService) Create(presetKey string) (*domain.Invoice, error) {
	preset, err := domain.GetPreset(presetKey)
	if err != nil {
		return nil, err
	}

	invoice := domain.NewInvoice(preset)
	invoice.CreatedAt = s.now()

	var edits []domain.Edit
	if s.defaults.Currency.Code != "" {
		edits = append(edits, domain.SetCurrency(s.defaults.Currency))
	}
	if domain.IsValidTemplate(s.defaults.Template) {
		edits = append(edits, domain.SetTemplate(s.defaults.Template))
	}
	if s.defaults.Seller.Name != "" || s.defaults.Seller.Address != "" {
		edits = append(edits, domain.SetSeller(s.defaults.Seller))
	}
	// re-applying the preset keeps the seller tax id present for taxed regimes
	edits = append(edits, domain.SetQREnabled(s.defaults.QREnabled), domain.ApplyPreset(preset))

	return domain.ApplyEdit(invoice, edits...), nil
}

func (s *invoiceService) Open(ctx context.Context, id string) (*domain.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, id)
}

func (s *invoiceService) Edit(invoice *domain.Invoice, edits ...domain.Edit) *domain.Invoice {
	return domain.ApplyEdit(invoice, edits...)
}

func (s *invoiceService) AttachLogo(invoice *domain.Invoice, data []byte) (*domain.Invoice, error) {
	logo, err := domain.NewLogo(data)
	if err != nil {
		return nil, err
	}
	return domain.ApplyEdit(invoice, domain.SetLogo(logo)), nil
}

func (s *invoiceService) Save(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	// Totals are derived, so recompute rather than trust the caller's copy
	working := domain.ApplyEdit(invoice)

	if err := domain.Validate(working).Err(); err != nil {
		return nil, err
	}

	// Number and document commit together or not at all
	err := s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		// A number, once stored, belongs to the invoice for good
		stored, err := s.invoiceRepo.GetByID(txCtx, working.ID)
		switch {
		case err == nil && stored.IsSaved():
			working.InvoiceNumber = stored.InvoiceNumber
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return err
		}

		if !working.IsSaved() {
			number, err := s.numbers.NextNumber(txCtx, working.Tax)
			if err != nil {
				return err
			}
			working.InvoiceNumber = number
		}
		return s.invoiceRepo.Save(txCtx, working)
	})
	if err != nil {
		s.logger.Error("failed to save invoice", zap.String("id", invoice.ID), zap.Error(err))
		if !errors.Is(err, domain.ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		return nil, err
	}

	s.logger.Info("invoice saved",
		zap.String("id", working.ID),
		zap.String("number", working.InvoiceNumber),
		zap.String("total", working.Totals.Total.StringFixed(2)),
	)
	return working, nil
}

func (s *invoiceService) Delete(ctx context.Context, id string) error {
	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("invoice deleted", zap.String("id", id))
	return nil
}

func (s *invoiceService) Duplicate(ctx context.Context, id string) (*domain.Invoice, error) {
	source, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	copied := source.Duplicate(s.now())
	if err := s.invoiceRepo.Save(ctx, copied); err != nil {
		return nil, err
	}

	s.logger.Info("invoice duplicated", zap.String("source", id), zap.String("id", copied.ID))
	return copied, nil
}

func (s *invoiceService) ListRecent(ctx context.Context, limit int) ([]*domain.Invoice, error) {
	return s.invoiceRepo.ListRecent(ctx, limit)
}

func (s *invoiceService) Subscribe(fn func()) func() {
	return s.invoiceRepo.Subscribe(fn)
}

func (s *invoiceService) Render(ctx context.Context, id string) ([]byte, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !invoice.IsSaved() {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotSaved, id)
	}

	data, err := s.renderer.Render(invoice)
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", invoice.InvoiceNumber, err)
	}
	return data, nil
}

func (s *invoiceService) ExportLedger(ctx context.Context, w io.Writer) error {
	all, err := s.invoiceRepo.ListRecent(ctx, 0)
	if err != nil {
		return err
	}

	numbered := make([]*domain.Invoice, 0, len(all))
	for _, inv := range all {
		if inv.IsSaved() {
			numbered = append(numbered, inv)
		}
	}

	if err := s.ledger.WriteLedger(w, numbered); err != nil {
		return fmt.Errorf("failed to export ledger: %w", err)
	}
	return nil
}
