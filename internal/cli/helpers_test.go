package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/andy/invoicer/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapFinder map[string]*domain.Invoice

func (f mapFinder) Open(ctx context.Context, id string) (*domain.Invoice, error) {
	if inv, ok := f[id]; ok {
		return inv, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
}

func (f mapFinder) ListRecent(ctx context.Context, limit int) ([]*domain.Invoice, error) {
	out := make([]*domain.Invoice, 0, len(f))
	for _, inv := range f {
		out = append(out, inv)
	}
	return out, nil
}

func finderWith(invoices ...*domain.Invoice) mapFinder {
	f := mapFinder{}
	for _, inv := range invoices {
		f[inv.ID] = inv
	}
	return f
}

func TestResolveInvoice(t *testing.T) {
	a := &domain.Invoice{ID: "aaaa1111-0000", InvoiceNumber: "2026-GST-0001"}
	b := &domain.Invoice{ID: "aaaa2222-0000"}
	c := &domain.Invoice{ID: "cccc3333-0000"}
	finder := finderWith(a, b, c)
	ctx := context.Background()

	tests := []struct {
		name string
		ref  string
		want *domain.Invoice
	}{
		{"full id", "aaaa2222-0000", b},
		{"invoice number", "2026-GST-0001", a},
		{"unique prefix", "cccc", c},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveInvoice(ctx, finder, tt.ref)
			require.NoError(t, err)
			assert.Same(t, tt.want, got)
		})
	}

	_, err := resolveInvoice(ctx, finder, "aaaa")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = resolveInvoice(ctx, finder, "zzzz")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPrintInvoice(t *testing.T) {
	p, err := domain.GetPreset(domain.PresetIndiaGST)
	require.NoError(t, err)

	taxID := "27ABCDE1234F1Z5"
	inv := domain.ApplyEdit(domain.NewInvoice(p),
		domain.SetSeller(domain.Party{Name: "Acme Traders", Address: "12 MG Road\nPune", TaxID: &taxID}),
		domain.SetCustomer(domain.Party{Name: "Globex", Address: "Mumbai"}),
		domain.AddItem(domain.NewItem("Steel bolts M8", "7318", 3, decimal.RequireFromString("10.005"))),
	)

	var buf bytes.Buffer
	printInvoice(&buf, inv)
	out := buf.String()

	assert.Contains(t, out, "Invoice: (draft)")
	assert.Contains(t, out, "GST ID: 27ABCDE1234F1Z5")
	assert.Contains(t, out, "  Pune\n")
	assert.Contains(t, out, "Steel bolts M8")
	assert.Contains(t, out, "Subtotal: INR 30.02")
	assert.Contains(t, out, "GST (18%): INR 5.40")
	assert.Contains(t, out, "Total:    ₹35.42")
}

func TestDescribeError(t *testing.T) {
	verr := domain.ValidationErrors{
		"seller.name": "Seller name is required",
		"items":       "At least one item is required",
	}.Err()

	err := describeError(verr)
	assert.Equal(t, "invoice cannot be saved:\n  items: At least one item is required\n  seller.name: Seller name is required", err.Error())

	plain := errors.New("disk full")
	assert.Same(t, plain, describeError(plain))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
