package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemNames(inv *Invoice) []string {
	names := make([]string, len(inv.Items))
	for i, it := range inv.Items {
		names[i] = it.Name
	}
	return names
}

func TestApplyEdit_LeavesInputUntouched(t *testing.T) {
	inv := validInvoice(t)
	before := inv.Clone()

	out := ApplyEdit(inv,
		SetCustomer(Party{Name: "Initech", Address: "4120 Freidrich Ln"}),
		AddItem(NewItem("Stapler", "", 2, decimal.NewFromInt(15))),
	)

	assert.Equal(t, before, inv)
	assert.Equal(t, "Initech", out.Customer.Name)
	assert.Len(t, out.Items, 2)
}

func TestApplyEdit_RecomputesTotals(t *testing.T) {
	inv := validInvoice(t) // 10 x 12.50 at 18%
	require.Equal(t, "147.5", inv.Totals.Total.String())

	out := ApplyEdit(inv, AddItem(NewItem("Washers", "", 100, decimal.RequireFromString("0.25"))))
	assert.Equal(t, "150", out.Totals.Subtotal.String())
	assert.Equal(t, "27", out.Totals.TaxAmount.String())
	assert.Equal(t, "177", out.Totals.Total.String())
}

func TestApplyPreset(t *testing.T) {
	noTaxPreset, _ := GetPreset(PresetNoTax)
	vatPreset, _ := GetPreset(PresetUKVAT)

	inv := ApplyEdit(validInvoice(t), ApplyPreset(noTaxPreset))
	assert.Equal(t, PresetNoTax, inv.PresetKey)
	assert.Nil(t, inv.Totals.TaxAmount)
	assert.True(t, inv.Totals.Total.Equal(inv.Totals.Subtotal))

	inv.Seller.TaxID = nil
	inv = ApplyEdit(inv, ApplyPreset(vatPreset))
	assert.Equal(t, "VAT", inv.Tax.Label)
	require.NotNil(t, inv.Seller.TaxID)
	assert.Equal(t, "", *inv.Seller.TaxID)
	require.NotNil(t, inv.Totals.TaxAmount)
	assert.Equal(t, "25", inv.Totals.TaxAmount.String())
}

func TestApplyPreset_DoesNotShareTaxConfig(t *testing.T) {
	p, _ := GetPreset(PresetIndiaGST)
	inv := ApplyEdit(NewInvoice(p), ApplyPreset(p))
	inv.Tax.Label = "changed"

	again, _ := GetPreset(PresetIndiaGST)
	assert.Equal(t, "GST", again.Tax.Label)
}

func TestAddItem_AssignsID(t *testing.T) {
	inv := ApplyEdit(validInvoice(t), AddItem(Item{Name: "Nuts", Qty: decimal.NewFromInt(1), Price: decimal.NewFromInt(1)}))
	assert.NotEmpty(t, inv.Items[1].ID)
	assert.NotEqual(t, inv.Items[0].ID, inv.Items[1].ID)
}

func TestUpdateItem(t *testing.T) {
	inv := validInvoice(t)
	id := inv.Items[0].ID

	out := ApplyEdit(inv, UpdateItem(id, func(it *Item) {
		it.ID = "hijacked"
		it.Qty = decimal.NewFromInt(2)
	}))
	assert.Equal(t, id, out.Items[0].ID)
	assert.Equal(t, "2", out.Items[0].Qty.String())
	assert.Equal(t, "10", inv.Items[0].Qty.String())

	unchanged := ApplyEdit(inv, UpdateItem("missing", func(it *Item) { it.Name = "x" }))
	assert.Equal(t, itemNames(inv), itemNames(unchanged))
}

func TestRemoveItem(t *testing.T) {
	inv := ApplyEdit(validInvoice(t),
		AddItem(NewItem("Nuts", "", 1, decimal.NewFromInt(1))),
		AddItem(NewItem("Screws", "", 1, decimal.NewFromInt(1))),
	)

	out := ApplyEdit(inv, RemoveItem(inv.Items[1].ID))
	assert.Equal(t, []string{"Steel bolts M8", "Screws"}, itemNames(out))
	assert.Len(t, inv.Items, 3)

	same := ApplyEdit(inv, RemoveItem("missing"))
	assert.Len(t, same.Items, 3)
}

func TestMoveItem(t *testing.T) {
	inv := ApplyEdit(validInvoice(t),
		AddItem(NewItem("Nuts", "", 1, decimal.NewFromInt(1))),
		AddItem(NewItem("Screws", "", 1, decimal.NewFromInt(1))),
	)
	last := inv.Items[2].ID

	tests := []struct {
		name string
		to   int
		want []string
	}{
		{"to front", 0, []string{"Screws", "Steel bolts M8", "Nuts"}},
		{"to middle", 1, []string{"Steel bolts M8", "Screws", "Nuts"}},
		{"clamped low", -5, []string{"Screws", "Steel bolts M8", "Nuts"}},
		{"clamped high", 10, []string{"Steel bolts M8", "Nuts", "Screws"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ApplyEdit(inv, MoveItem(last, tt.to))
			assert.Equal(t, tt.want, itemNames(out))
			assert.True(t, out.Totals.Total.Equal(inv.Totals.Total))
		})
	}
}

func TestSetLogo_CopiesBytes(t *testing.T) {
	logo := &Logo{Data: []byte{1, 2, 3}, MIMEType: "image/png"}
	inv := ApplyEdit(validInvoice(t), SetLogo(logo))

	logo.Data[0] = 9
	assert.Equal(t, byte(1), inv.Logo.Data[0])

	cleared := ApplyEdit(inv, ClearLogo())
	assert.Nil(t, cleared.Logo)
	assert.NotNil(t, inv.Logo)
}

func TestSimpleSetters(t *testing.T) {
	usd, ok := LookupCurrency("USD")
	require.True(t, ok)

	inv := ApplyEdit(validInvoice(t),
		SetCurrency(usd),
		SetTemplate(TemplateModern),
		SetQREnabled(true),
	)
	assert.Equal(t, "USD", inv.Currency.Code)
	assert.Equal(t, TemplateModern, inv.Template)
	assert.True(t, inv.QREnabled)
}
