package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// letters, space, dot and hyphen; no digits or symbols
	nameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z .-]{1,48}$`)

	itemNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 .-]{1,58}$`)

	taxIDRegex = regexp.MustCompile(`^[0-9A-Z]{15}$`)

	minQty   = decimal.NewFromInt(1)
	maxQty   = decimal.NewFromInt(10_000)
	maxPrice = decimal.NewFromInt(10_000_000)
)

// ValidationErrors maps a field path such as "items.0.qty" to a message.
// An empty map means the invoice may be saved.
type ValidationErrors map[string]string

// Keys returns the failing field paths in sorted order
func (v ValidationErrors) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Err returns a *ValidationError, or nil when there are no errors
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Fields: v}
}

// Validate checks every save rule independently and never mutates the invoice.
func Validate(inv *Invoice) ValidationErrors {
	errs := ValidationErrors{}

	// Seller
	if strings.TrimSpace(inv.Seller.Name) == "" {
		errs["seller.name"] = "Seller name is required"
	} else if !nameRegex.MatchString(inv.Seller.Name) {
		errs["seller.name"] = "Only letters, spaces, dot (.) and hyphen (-) allowed"
	}

	if strings.TrimSpace(inv.Seller.Address) == "" {
		errs["seller.address"] = "Seller address is required"
	}

	if inv.Tax.IsTaxed() {
		taxID := inv.Seller.TaxIDValue()
		if strings.TrimSpace(taxID) == "" {
			errs["seller.taxId"] = fmt.Sprintf("%s ID is required", inv.Tax.Label)
		} else if !taxIDRegex.MatchString(taxID) {
			errs["seller.taxId"] = fmt.Sprintf("%s ID must be 15 letters/numbers", inv.Tax.Label)
		}
	}

	// Customer; tax id stays optional
	if strings.TrimSpace(inv.Customer.Name) == "" {
		errs["customer.name"] = "Customer name is required"
	} else if !nameRegex.MatchString(inv.Customer.Name) {
		errs["customer.name"] = "Invalid customer name format"
	}

	if strings.TrimSpace(inv.Customer.Address) == "" {
		errs["customer.address"] = "Customer address is required"
	}

	// Items
	if len(inv.Items) == 0 {
		errs["items"] = "At least one item is required"
	}

	for idx, item := range inv.Items {
		prefix := fmt.Sprintf("items.%d.", idx)

		if strings.TrimSpace(item.Name) == "" {
			errs[prefix+"name"] = "Item name is required"
		} else if !itemNameRegex.MatchString(item.Name) {
			errs[prefix+"name"] = "Item name can contain letters and numbers only"
		}

		if !item.Qty.IsInteger() {
			errs[prefix+"qty"] = "Quantity must be a whole number"
		} else if item.Qty.LessThan(minQty) || item.Qty.GreaterThan(maxQty) {
			errs[prefix+"qty"] = "Quantity must be between 1 and 10,000"
		}

		if item.Price.IsNegative() {
			errs[prefix+"price"] = "Price cannot be negative"
		} else if item.Price.GreaterThan(maxPrice) {
			errs[prefix+"price"] = "Price cannot exceed 10,000,000"
		}
	}

	// Totals
	if !inv.Totals.Total.IsPositive() {
		errs["totals.total"] = "Invoice total must be greater than 0"
	}

	return errs
}
