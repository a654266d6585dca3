package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Preset is a named tax regime offered when creating an invoice
type Preset struct {
	Key   string
	Label string
	Tax   TaxConfig
}

const (
	PresetIndiaGST = "INDIA_GST"
	PresetUKVAT    = "UK_VAT"
	PresetUAEVAT   = "UAE_VAT"
	PresetSaudiVAT = "SAUDI_VAT"
	PresetUSSales  = "US_SALES"
	PresetNoTax    = "NO_TAX"
)

var presets = []Preset{
	{
		Key:   PresetIndiaGST,
		Label: "GST Invoice (India)",
		Tax:   TaxConfig{Mode: TaxModeGST, Rate: decimal.RequireFromString("0.18"), Label: "GST"},
	},
	{
		Key:   PresetUKVAT,
		Label: "VAT Invoice (UK / EU)",
		Tax:   TaxConfig{Mode: TaxModeVAT, Rate: decimal.RequireFromString("0.2"), Label: "VAT"},
	},
	{
		Key:   PresetUAEVAT,
		Label: "VAT Invoice (UAE)",
		Tax:   TaxConfig{Mode: TaxModeVAT, Rate: decimal.RequireFromString("0.05"), Label: "VAT"},
	},
	{
		Key:   PresetSaudiVAT,
		Label: "VAT Invoice (Saudi Arabia)",
		Tax:   TaxConfig{Mode: TaxModeVAT, Rate: decimal.RequireFromString("0.15"), Label: "VAT"},
	},
	{
		Key:   PresetUSSales,
		Label: "Sales Tax Invoice (USA)",
		Tax:   TaxConfig{Mode: TaxModeSalesTax, Rate: decimal.RequireFromString("0.07"), Label: "Sales Tax"},
	},
	{
		Key:   PresetNoTax,
		Label: "Simple Invoice (No Tax)",
		Tax:   TaxConfig{Mode: TaxModeNone, Rate: decimal.Zero, Label: "No Tax"},
	},
}

// ListPresets returns the catalog in display order
func ListPresets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// GetPreset looks up a preset by key
func GetPreset(key string) (Preset, error) {
	for _, p := range presets {
		if p.Key == key {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrInvalidPreset, key)
}
