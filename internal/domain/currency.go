package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCurrency is used for new drafts unless configured otherwise
var DefaultCurrency = Currency{Code: "INR", Locale: "en-IN"}

var currencies = []Currency{
	{Code: "INR", Locale: "en-IN"},
	{Code: "USD", Locale: "en-US"},
	{Code: "EUR", Locale: "de-DE"},
	{Code: "GBP", Locale: "en-GB"},
	{Code: "AED", Locale: "ar-AE"},
	{Code: "SAR", Locale: "ar-SA"},
}

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"AED": "د.إ",
	"SAR": "﷼",
}

// ListCurrencies returns the supported currencies
func ListCurrencies() []Currency {
	out := make([]Currency, len(currencies))
	copy(out, currencies)
	return out
}

// LookupCurrency finds a supported currency by ISO code
func LookupCurrency(code string) (Currency, bool) {
	for _, c := range currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// Symbol returns the display symbol, falling back to the code
func (c Currency) Symbol() string {
	if s, ok := currencySymbols[c.Code]; ok {
		return s
	}
	return c.Code
}

// ASCIIPrefix is the symbol used where only Latin-1 glyphs are available
func (c Currency) ASCIIPrefix() string {
	if c.Code == "INR" {
		return "Rs. "
	}
	return c.Code + " "
}

// FormatMoney formats an amount with the currency symbol and the grouping
// rules of the currency's locale, always with two decimals.
func FormatMoney(amount decimal.Decimal, c Currency) string {
	return c.Symbol() + FormatAmount(amount, c.Locale)
}

// FormatAmount formats an amount with two decimals using the digit grouping
// of locale, for example "1.234,50" for de-DE.
func FormatAmount(amount decimal.Decimal, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	f, _ := amount.Round(2).Float64()
	p := message.NewPrinter(tag)
	return p.Sprint(number.Decimal(f, number.Scale(2)))
}
