package export

import (
	"fmt"
	"io"

	"github.com/andy/invoicer/internal/domain"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// LedgerSheet is the name of the worksheet holding the ledger rows
const LedgerSheet = "Invoices"

// LedgerHeaders are the column titles of the ledger, in order
var LedgerHeaders = []string{
	"Invoice No", "Date", "Customer", "Preset", "Currency", "Subtotal", "Tax", "Total",
}

// LedgerExporter writes invoice summaries to an Excel workbook
type LedgerExporter struct {
	logger *zap.Logger
}

// NewLedgerExporter creates a new ledger exporter
func NewLedgerExporter(logger *zap.Logger) *LedgerExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerExporter{logger: logger}
}

// WriteLedger writes one row per invoice, in the given order
func (e *LedgerExporter) WriteLedger(w io.Writer, invoices []*domain.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", LedgerSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(LedgerHeaders))
	for i, h := range LedgerHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(LedgerSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, inv := range invoices {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			inv.InvoiceNumber,
			inv.CreatedAt.Format("2006-01-02"),
			inv.Customer.Name,
			inv.PresetKey,
			inv.Currency.Code,
			inv.Totals.Subtotal.Round(2).InexactFloat64(),
			inv.Totals.TaxOrZero().InexactFloat64(),
			inv.Totals.Total.Round(2).InexactFloat64(),
		}
		if err := f.SetSheetRow(LedgerSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", inv.InvoiceNumber, err)
		}
	}

	e.applyStyles(f, len(invoices))

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("ledger exported", zap.Int("rows", len(invoices)))
	return nil
}

// applyStyles formats the header and money columns. Styling failures only
// affect presentation, so they are logged rather than returned.
func (e *LedgerExporter) applyStyles(f *excelize.File, rows int) {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E0E7FF"}},
	})
	if err == nil {
		err = f.SetCellStyle(LedgerSheet, "A1", "H1", headerStyle)
	}
	if err != nil {
		e.logger.Warn("failed to style ledger header", zap.Error(err))
	}

	if rows > 0 {
		// built-in format 4 is #,##0.00
		moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
		if err == nil {
			err = f.SetCellStyle(LedgerSheet, "F2", fmt.Sprintf("H%d", rows+1), moneyStyle)
		}
		if err != nil {
			e.logger.Warn("failed to style ledger amounts", zap.Error(err))
		}
	}

	if err := f.SetColWidth(LedgerSheet, "A", "H", 16); err != nil {
		e.logger.Warn("failed to size ledger columns", zap.Error(err))
	}
	if err := f.SetPanes(LedgerSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		e.logger.Warn("failed to freeze ledger header", zap.Error(err))
	}
}
