package repository

import (
	"encoding/json"
	"fmt"

	"github.com/andy/invoicer/internal/domain"
)

// createdAtIndex is the secondary index value used to list invoices by age
func createdAtIndex(invoice *domain.Invoice) int64 {
	return invoice.CreatedAt.UnixNano()
}

func encodeInvoice(invoice *domain.Invoice) ([]byte, error) {
	data, err := json.Marshal(invoice)
	if err != nil {
		return nil, fmt.Errorf("failed to encode invoice: %w", err)
	}
	return data, nil
}

func decodeInvoice(data []byte) (*domain.Invoice, error) {
	var invoice domain.Invoice
	if err := json.Unmarshal(data, &invoice); err != nil {
		return nil, fmt.Errorf("failed to decode invoice: %w", err)
	}
	if invoice.Items == nil {
		invoice.Items = make([]domain.Item, 0)
	}
	return &invoice, nil
}

// storeError marks err as a storage failure for callers matching on
// domain.ErrStoreUnavailable
func storeError(action string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", action, domain.ErrStoreUnavailable, err)
}
