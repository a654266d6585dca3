package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andy/invoicer/internal/domain"
	"github.com/shopspring/decimal"
)

type invoiceFinder interface {
	Open(ctx context.Context, id string) (*domain.Invoice, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Invoice, error)
}

// resolveInvoice accepts a full id, an invoice number or a unique id prefix
func resolveInvoice(ctx context.Context, finder invoiceFinder, ref string) (*domain.Invoice, error) {
	invoice, err := finder.Open(ctx, ref)
	if err == nil {
		return invoice, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	all, err := finder.ListRecent(ctx, 0)
	if err != nil {
		return nil, err
	}

	var match *domain.Invoice
	for _, inv := range all {
		if inv.InvoiceNumber == ref {
			return inv, nil
		}
		if strings.HasPrefix(inv.ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous invoice reference %q", ref)
			}
			match = inv
		}
	}

	if match == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref)
	}
	return match, nil
}

func displayNumber(inv *domain.Invoice) string {
	if inv.IsSaved() {
		return inv.InvoiceNumber
	}
	return "(draft)"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printInvoice(w io.Writer, inv *domain.Invoice) {
	money := func(d decimal.Decimal) string {
		return inv.Currency.Code + " " + d.StringFixed(2)
	}

	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "Invoice: %s  [%s]\n", displayNumber(inv), inv.ID)
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "Preset:   %s (%s)\n", inv.PresetKey, inv.Tax.Label)
	fmt.Fprintf(w, "Date:     %s\n", inv.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(w, "Template: %s\n", inv.Template)
	fmt.Fprintln(w)
	printParty(w, "Seller", inv.Seller, inv.Tax)
	printParty(w, "Bill To", inv.Customer, inv.Tax)

	if len(inv.Items) > 0 {
		fmt.Fprintln(w, "Items:")
		fmt.Fprintln(w, strings.Repeat("-", 80))
		fmt.Fprintf(w, "%-4s %-32s %-8s %8s %12s %12s\n", "#", "Description", "HSN/SAC", "Qty", "Rate", "Amount")
		fmt.Fprintln(w, strings.Repeat("-", 80))
		for i, item := range inv.Items {
			fmt.Fprintf(w, "%-4d %-32s %-8s %8s %12s %12s\n",
				i+1,
				truncate(item.Name, 32),
				truncate(item.HSN, 8),
				item.Qty.String(),
				item.Price.StringFixed(2),
				item.Amount().StringFixed(2),
			)
		}
		fmt.Fprintln(w, strings.Repeat("-", 80))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Subtotal: %s\n", money(inv.Totals.Subtotal))
	if inv.Totals.TaxAmount != nil {
		fmt.Fprintf(w, "%s (%s%%): %s\n", inv.Tax.Label, inv.Tax.Rate.Shift(2).String(), money(*inv.Totals.TaxAmount))
	}
	fmt.Fprintf(w, "Total:    %s\n", domain.FormatMoney(inv.Totals.Total, inv.Currency))
	fmt.Fprintln(w, strings.Repeat("=", 80))
}

func printParty(w io.Writer, title string, p domain.Party, tax domain.TaxConfig) {
	fmt.Fprintf(w, "%s: %s\n", title, p.Name)
	for _, line := range strings.Split(p.Address, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	if id := p.TaxIDValue(); id != "" {
		fmt.Fprintf(w, "  %s ID: %s\n", tax.Label, id)
	}
	fmt.Fprintln(w)
}

// describeError expands validation failures into one line per field
func describeError(err error) error {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return err
	}

	var b strings.Builder
	b.WriteString("invoice cannot be saved:")
	for _, field := range verr.Fields.Keys() {
		fmt.Fprintf(&b, "\n  %s: %s", field, verr.Fields[field])
	}
	return errors.New(b.String())
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
