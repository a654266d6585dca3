package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/andy/invoicer/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// draftFile is the YAML document accepted by `invoices create` and
// `invoices edit`. Absent fields leave the invoice untouched; items are
// appended.
//
//	preset: INDIA_GST
//	currency: INR
//	seller: {name: Acme Traders, address: Pune, tax_id: 27ABCDE1234F1Z5}
//	customer: {name: Globex Corp, address: Mumbai}
//	items:
//	  - {name: Steel bolts M8, hsn: "7318", qty: 10, price: "12.50"}
type draftFile struct {
	Preset   string     `yaml:"preset"`
	Currency string     `yaml:"currency"`
	Template string     `yaml:"template"`
	QR       *bool      `yaml:"qr"`
	Seller   *partyFile `yaml:"seller"`
	Customer *partyFile `yaml:"customer"`
	Items    []itemFile `yaml:"items"`
}

type partyFile struct {
	Name    string  `yaml:"name"`
	Address string  `yaml:"address"`
	TaxID   *string `yaml:"tax_id"`
}

type itemFile struct {
	Name  string `yaml:"name"`
	HSN   string `yaml:"hsn"`
	Qty   string `yaml:"qty"`
	Price string `yaml:"price"`
}

// readDraft decodes a draft document, rejecting unknown keys so typos are
// not silently ignored.
func readDraft(r io.Reader) (*draftFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var d draftFile
	if err := dec.Decode(&d); err != nil {
		if err == io.EOF {
			return &d, nil
		}
		return nil, fmt.Errorf("failed to parse draft: %w", err)
	}
	return &d, nil
}

func loadDraft(path string) (*draftFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return readDraft(bytes.NewReader(data))
}

// Edits converts the document into invoice edits, in a fixed order: preset
// first so the seller block can then override the tax id.
// draftBuilder is the part of the invoice service a draft needs
type draftBuilder interface {
	Create(presetKey string) (*domain.Invoice, error)
	Edit(invoice *domain.Invoice, edits ...domain.Edit) *domain.Invoice
}

// build creates an invoice from the draft. A non-empty presetKey takes
// precedence over the draft's preset; fallback is used when neither is set.
func (d *draftFile) build(svc draftBuilder, presetKey, fallback string) (*domain.Invoice, error) {
	rest := *d
	rest.Preset = ""
	switch {
	case presetKey != "":
	case d.Preset != "":
		presetKey = d.Preset
	default:
		presetKey = fallback
	}

	edits, err := rest.Edits()
	if err != nil {
		return nil, err
	}

	invoice, err := svc.Create(presetKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}
	return svc.Edit(invoice, edits...), nil
}

func (d *draftFile) Edits() ([]domain.Edit, error) {
	var edits []domain.Edit

	if d.Preset != "" {
		p, err := domain.GetPreset(d.Preset)
		if err != nil {
			return nil, err
		}
		edits = append(edits, domain.ApplyPreset(p))
	}

	if d.Currency != "" {
		c, ok := domain.LookupCurrency(strings.ToUpper(d.Currency))
		if !ok {
			return nil, fmt.Errorf("unsupported currency %q", d.Currency)
		}
		edits = append(edits, domain.SetCurrency(c))
	}

	if d.Template != "" {
		key := domain.TemplateKey(d.Template)
		if !domain.IsValidTemplate(key) {
			return nil, fmt.Errorf("unknown template %q", d.Template)
		}
		edits = append(edits, domain.SetTemplate(key))
	}

	if d.QR != nil {
		edits = append(edits, domain.SetQREnabled(*d.QR))
	}
	if d.Seller != nil {
		edits = append(edits, domain.SetSeller(d.Seller.party()))
	}
	if d.Customer != nil {
		edits = append(edits, domain.SetCustomer(d.Customer.party()))
	}

	for i, it := range d.Items {
		item, err := it.item()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		edits = append(edits, domain.AddItem(item))
	}

	return edits, nil
}

func (p *partyFile) party() domain.Party {
	party := domain.Party{Name: p.Name, Address: p.Address}
	if p.TaxID != nil {
		id := *p.TaxID
		party.TaxID = &id
	}
	return party
}

// item parses quantities and prices as decimals. Fractional quantities are
// accepted here and reported by validation on save.
func (it itemFile) item() (domain.Item, error) {
	qty, err := parseDecimal("qty", it.Qty)
	if err != nil {
		return domain.Item{}, err
	}
	price, err := parseDecimal("price", it.Price)
	if err != nil {
		return domain.Item{}, err
	}
	return domain.Item{Name: it.Name, HSN: it.HSN, Qty: qty, Price: price}, nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%s is required", field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", field, s)
	}
	return d, nil
}
