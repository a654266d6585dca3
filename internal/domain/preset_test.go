package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPresets(t *testing.T) {
	got := ListPresets()
	require.Len(t, got, 6)

	keys := make([]string, len(got))
	for i, p := range got {
		keys[i] = p.Key
	}
	assert.Equal(t, []string{
		PresetIndiaGST, PresetUKVAT, PresetUAEVAT, PresetSaudiVAT, PresetUSSales, PresetNoTax,
	}, keys)
}

func TestListPresets_ReturnsCopy(t *testing.T) {
	got := ListPresets()
	got[0].Label = "changed"

	p, err := GetPreset(PresetIndiaGST)
	require.NoError(t, err)
	assert.Equal(t, "GST Invoice (India)", p.Label)
}

func TestGetPreset(t *testing.T) {
	tests := []struct {
		key       string
		wantMode  TaxMode
		wantRate  string
		wantLabel string
	}{
		{PresetIndiaGST, TaxModeGST, "0.18", "GST"},
		{PresetUKVAT, TaxModeVAT, "0.2", "VAT"},
		{PresetUAEVAT, TaxModeVAT, "0.05", "VAT"},
		{PresetSaudiVAT, TaxModeVAT, "0.15", "VAT"},
		{PresetUSSales, TaxModeSalesTax, "0.07", "Sales Tax"},
		{PresetNoTax, TaxModeNone, "0", "No Tax"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			p, err := GetPreset(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.key, p.Key)
			assert.Equal(t, tt.wantMode, p.Tax.Mode)
			assert.Equal(t, tt.wantRate, p.Tax.Rate.String())
			assert.Equal(t, tt.wantLabel, p.Tax.Label)
		})
	}
}

func TestGetPreset_Unknown(t *testing.T) {
	_, err := GetPreset("MARS_TAX")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPreset))
}

func TestGetPreset_NoTaxIsTheOnlyUntaxedPreset(t *testing.T) {
	for _, p := range ListPresets() {
		assert.Equal(t, p.Key != PresetNoTax, p.Tax.IsTaxed(), p.Key)
		if !p.Tax.IsTaxed() {
			assert.True(t, p.Tax.Rate.IsZero())
		}
	}
}
