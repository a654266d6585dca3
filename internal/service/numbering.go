package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/repository"
)

// NumberingKey returns the counter key for a year and tax regime, for
// example "2026-GST" or "2026-NOTAX".
func NumberingKey(year int, tax domain.TaxConfig) string {
	return fmt.Sprintf("%d-%s", year, numberPrefix(tax))
}

// numberPrefix is "NOTAX" for untaxed invoices, otherwise the tax label
// upper-cased with all whitespace removed
func numberPrefix(tax domain.TaxConfig) string {
	if !tax.IsTaxed() {
		return "NOTAX"
	}
	return strings.ToUpper(strings.Join(strings.Fields(tax.Label), ""))
}

// NumberSequence hands out invoice numbers, one counter per year and tax regime
type NumberSequence interface {
	// NextNumber consumes the next number for the regime in the current year.
	// Called with a transaction context, the increment joins that transaction.
	NextNumber(ctx context.Context, tax domain.TaxConfig) (string, error)
}

type numberSequence struct {
	counters repository.CounterRepository
	now      func() time.Time
}

// NewNumberSequence creates a sequence backed by counters. now defaults to time.Now.
func NewNumberSequence(counters repository.CounterRepository, now func() time.Time) NumberSequence {
	if now == nil {
		now = time.Now
	}
	return &numberSequence{counters: counters, now: now}
}

func (s *numberSequence) NextNumber(ctx context.Context, tax domain.TaxConfig) (string, error) {
	key := NumberingKey(s.now().Year(), tax)

	count, err := s.counters.Increment(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to generate invoice number: %w", err)
	}

	return fmt.Sprintf("%s-%04d", key, count), nil
}
