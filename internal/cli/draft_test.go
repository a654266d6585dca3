package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andy/invoicer/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDraft = `
preset: INDIA_GST
currency: usd
template: modern
qr: true
seller:
  name: Acme Traders
  address: 12 MG Road, Pune
  tax_id: 27ABCDE1234F1Z5
customer:
  name: Globex Corp.
  address: Mumbai
items:
  - name: Steel bolts M8
    hsn: "7318"
    qty: 10
    price: 12.50
  - name: Washers
    qty: "3"
    price: "10.005"
`

func TestDraft_Edits(t *testing.T) {
	d, err := readDraft(strings.NewReader(sampleDraft))
	require.NoError(t, err)

	edits, err := d.Edits()
	require.NoError(t, err)

	base, err := domain.GetPreset(domain.PresetNoTax)
	require.NoError(t, err)
	inv := domain.ApplyEdit(domain.NewInvoice(base), edits...)

	assert.Equal(t, domain.PresetIndiaGST, inv.PresetKey)
	assert.Equal(t, "USD", inv.Currency.Code)
	assert.Equal(t, domain.TemplateModern, inv.Template)
	assert.True(t, inv.QREnabled)
	assert.Equal(t, "27ABCDE1234F1Z5", inv.Seller.TaxIDValue())
	assert.Equal(t, "Globex Corp.", inv.Customer.Name)

	require.Len(t, inv.Items, 2)
	assert.NotEmpty(t, inv.Items[0].ID)
	assert.True(t, inv.Items[0].Qty.Equal(decimal.NewFromInt(10)))
	assert.True(t, inv.Items[1].Price.Equal(decimal.RequireFromString("10.005")))

	// 125 + 30.015 = 155.015, 18% GST = 27.90
	assert.Equal(t, "155.015", inv.Totals.Subtotal.String())
	assert.Equal(t, "182.92", inv.Totals.Total.StringFixed(2))
	assert.Empty(t, domain.Validate(inv))
}

func TestDraft_EmptyDocumentHasNoEdits(t *testing.T) {
	d, err := readDraft(strings.NewReader(""))
	require.NoError(t, err)

	edits, err := d.Edits()
	require.NoError(t, err)
	assert.Empty(t, edits)
}

func TestDraft_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		is   error
	}{
		{"unknown preset", "preset: MARS\n", domain.ErrInvalidPreset},
		{"unknown currency", "currency: XYZ\n", nil},
		{"unknown template", "template: neon\n", nil},
		{"missing qty", "items:\n  - {name: Bolt, price: 1}\n", nil},
		{"bad price", "items:\n  - {name: Bolt, qty: 1, price: cheap}\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := readDraft(strings.NewReader(tt.doc))
			require.NoError(t, err)

			_, err = d.Edits()
			require.Error(t, err)
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is))
			}
		})
	}
}

func TestDraft_UnknownFieldRejected(t *testing.T) {
	_, err := readDraft(strings.NewReader("presett: NO_TAX\n"))
	assert.Error(t, err)
}

func TestLoadDraft(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draft.yaml")
	require.NoError(t, os.WriteFile(path, []byte("preset: NO_TAX\n"), 0644))

	d, err := loadDraft(path)
	require.NoError(t, err)
	assert.Equal(t, domain.PresetNoTax, d.Preset)

	_, err = loadDraft(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

type domainBuilder struct{}

func (domainBuilder) Create(presetKey string) (*domain.Invoice, error) {
	p, err := domain.GetPreset(presetKey)
	if err != nil {
		return nil, err
	}
	return domain.NewInvoice(p), nil
}

func (domainBuilder) Edit(inv *domain.Invoice, edits ...domain.Edit) *domain.Invoice {
	return domain.ApplyEdit(inv, edits...)
}

func TestDraft_BuildPresetPrecedence(t *testing.T) {
	d, err := readDraft(strings.NewReader(sampleDraft))
	require.NoError(t, err)
	empty, err := readDraft(strings.NewReader(""))
	require.NoError(t, err)

	tests := []struct {
		name   string
		draft  *draftFile
		flag   string
		want   string
		taxTag string
	}{
		{"flag beats draft", d, domain.PresetUKVAT, domain.PresetUKVAT, "VAT"},
		{"draft beats fallback", d, "", domain.PresetIndiaGST, "GST"},
		{"fallback", empty, "", domain.PresetUSSales, "Sales Tax"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := tt.draft.build(domainBuilder{}, tt.flag, domain.PresetUSSales)
			require.NoError(t, err)
			assert.Equal(t, tt.want, inv.PresetKey)
			assert.Equal(t, tt.taxTag, inv.Tax.Label)
		})
	}

	// the draft itself is left alone
	assert.Equal(t, domain.PresetIndiaGST, d.Preset)

	inv, err := d.build(domainBuilder{}, domain.PresetUKVAT, "")
	require.NoError(t, err)
	assert.Equal(t, "USD", inv.Currency.Code)
	assert.Len(t, inv.Items, 2)
}

func TestDraft_BuildUnknownPreset(t *testing.T) {
	d, err := readDraft(strings.NewReader(sampleDraft))
	require.NoError(t, err)

	_, err = d.build(domainBuilder{}, "MARS_TAX", "")
	assert.ErrorIs(t, err, domain.ErrInvalidPreset)
}
