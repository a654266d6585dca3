package domain

import "github.com/shopspring/decimal"

// ComputeTotals derives subtotal, tax and total from items and the tax regime.
// Line amounts are summed unrounded; tax and total are rounded once, half away
// from zero, to two places.
func ComputeTotals(items []Item, tax TaxConfig) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount())
	}

	if !tax.IsTaxed() {
		return Totals{
			Subtotal: subtotal,
			Total:    subtotal,
		}
	}

	taxAmount := subtotal.Mul(tax.Rate).Round(2)
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: &taxAmount,
		Total:     subtotal.Add(taxAmount).Round(2),
	}
}
