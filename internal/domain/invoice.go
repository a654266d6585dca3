package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TaxMode string

const (
	TaxModeNone     TaxMode = "NONE"
	TaxModeGST      TaxMode = "GST"
	TaxModeVAT      TaxMode = "VAT"
	TaxModeSalesTax TaxMode = "SALES_TAX"
)

// TaxConfig is the tax regime applied to an invoice. It is copied from a
// preset when the invoice is created and never shared afterwards.
type TaxConfig struct {
	Mode  TaxMode         `json:"mode"`
	Rate  decimal.Decimal `json:"rate"`
	Label string          `json:"label"`
}

// IsTaxed returns true unless the regime is NONE
func (t TaxConfig) IsTaxed() bool {
	return t.Mode != TaxModeNone
}

type Currency struct {
	Code   string `json:"code"`
	Locale string `json:"locale"`
}

type Party struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	TaxID   *string `json:"taxId,omitempty"`
}

// TaxIDValue returns the tax id or "" when unset
func (p Party) TaxIDValue() string {
	if p.TaxID == nil {
		return ""
	}
	return *p.TaxID
}

func (p Party) clone() Party {
	if p.TaxID != nil {
		id := *p.TaxID
		p.TaxID = &id
	}
	return p
}

type Item struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	HSN   string          `json:"hsn,omitempty"`
	Qty   decimal.Decimal `json:"qty"`
	Price decimal.Decimal `json:"price"`
}

// Amount returns qty * price, unrounded
func (i Item) Amount() decimal.Decimal {
	return i.Qty.Mul(i.Price)
}

// NewItem creates an item with a fresh id
func NewItem(name, hsn string, qty int64, price decimal.Decimal) Item {
	return Item{
		ID:    uuid.NewString(),
		Name:  name,
		HSN:   hsn,
		Qty:   decimal.NewFromInt(qty),
		Price: price,
	}
}

// Totals is derived from items and tax. It is never edited directly.
type Totals struct {
	Subtotal  decimal.Decimal  `json:"subtotal"`
	TaxAmount *decimal.Decimal `json:"taxAmount,omitempty"`
	Total     decimal.Decimal  `json:"total"`
}

// TaxOrZero returns the tax amount, or zero for untaxed invoices
func (t Totals) TaxOrZero() decimal.Decimal {
	if t.TaxAmount == nil {
		return decimal.Zero
	}
	return *t.TaxAmount
}

type Logo struct {
	Data     []byte `json:"data"`
	MIMEType string `json:"type"`
}

// Clone returns a deep copy of the logo bytes
func (l *Logo) Clone() *Logo {
	if l == nil {
		return nil
	}
	data := make([]byte, len(l.Data))
	copy(data, l.Data)
	return &Logo{Data: data, MIMEType: l.MIMEType}
}

type Invoice struct {
	ID            string      `json:"id"`
	InvoiceNumber string      `json:"invoiceNumber"`
	PresetKey     string      `json:"presetKey"`
	Tax           TaxConfig   `json:"tax"`
	Currency      Currency    `json:"currency"`
	Seller        Party       `json:"seller"`
	Customer      Party       `json:"customer"`
	Items         []Item      `json:"items"`
	Totals        Totals      `json:"totals"`
	Template      TemplateKey `json:"template"`
	Logo          *Logo       `json:"logo,omitempty"`
	QREnabled     bool        `json:"qrEnabled"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// NewInvoice creates an empty in-memory draft for the given preset.
// The draft has no number and zeroed totals.
func NewInvoice(preset Preset) *Invoice {
	inv := &Invoice{
		ID:        uuid.NewString(),
		PresetKey: preset.Key,
		Tax:       preset.Tax,
		Currency:  DefaultCurrency,
		Items:     make([]Item, 0),
		Template:  DefaultTemplate,
		CreatedAt: time.Now(),
	}

	if preset.Tax.IsTaxed() {
		sellerID, customerID := "", ""
		inv.Seller.TaxID = &sellerID
		inv.Customer.TaxID = &customerID
	}

	inv.Totals = ComputeTotals(inv.Items, inv.Tax)
	return inv
}

// IsSaved returns true once a number has been assigned
func (i *Invoice) IsSaved() bool {
	return i.InvoiceNumber != ""
}

// Clone returns a deep copy. Logo bytes are copied, not shared.
func (i *Invoice) Clone() *Invoice {
	c := *i
	c.Seller = i.Seller.clone()
	c.Customer = i.Customer.clone()
	c.Items = make([]Item, len(i.Items))
	copy(c.Items, i.Items)
	if i.Totals.TaxAmount != nil {
		tax := *i.Totals.TaxAmount
		c.Totals.TaxAmount = &tax
	}
	c.Logo = i.Logo.Clone()
	return &c
}

// Duplicate returns an independent copy with a new id, no number and a new
// creation time. Item ids are regenerated as well.
func (i *Invoice) Duplicate(now time.Time) *Invoice {
	c := i.Clone()
	c.ID = uuid.NewString()
	c.InvoiceNumber = ""
	c.CreatedAt = now
	for idx := range c.Items {
		c.Items[idx].ID = uuid.NewString()
	}
	return c
}

// ShareText is the short message used when sharing an invoice by chat or mail
func (i *Invoice) ShareText() string {
	return fmt.Sprintf("Invoice %s\nAmount: %s %s", i.InvoiceNumber, i.Totals.Total.StringFixed(2), i.Currency.Code)
}
