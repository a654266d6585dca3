package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andy/invoicer/internal/db"
)

type counter struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// CounterRepo keeps one monotonically increasing counter per key
type CounterRepo struct {
	db db.KV
}

// NewCounterRepo creates a new CounterRepo
func NewCounterRepo(kv db.KV) *CounterRepo {
	return &CounterRepo{db: kv}
}

// Increment reads, bumps and writes the counter in one transaction. Two
// callers never observe the same value for a key.
func (r *CounterRepo) Increment(ctx context.Context, key string) (int, error) {
	var next int
	err := update(ctx, r.db, func(tx *db.Tx) error {
		c, err := readCounter(tx, key)
		if err != nil {
			return err
		}

		c.Count++
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to encode counter: %w", err)
		}
		if err := tx.Put(db.CollectionInvoiceCounters, key, data, int64(c.Count)); err != nil {
			return err
		}

		next = c.Count
		return nil
	})
	if err != nil {
		return 0, storeError("increment counter "+key, err)
	}
	return next, nil
}

// Get returns the current value of the counter
func (r *CounterRepo) Get(ctx context.Context, key string) (int, error) {
	var c counter
	err := view(ctx, r.db, func(tx *db.Tx) error {
		var err error
		c, err = readCounter(tx, key)
		return err
	})
	if err != nil {
		return 0, storeError("get counter "+key, err)
	}
	return c.Count, nil
}

func readCounter(tx *db.Tx, key string) (counter, error) {
	data, err := tx.Get(db.CollectionInvoiceCounters, key)
	if errors.Is(err, db.ErrKeyNotFound) {
		return counter{Key: key}, nil
	}
	if err != nil {
		return counter{}, err
	}

	var c counter
	if err := json.Unmarshal(data, &c); err != nil {
		return counter{}, fmt.Errorf("failed to decode counter %s: %w", key, err)
	}
	return c, nil
}
