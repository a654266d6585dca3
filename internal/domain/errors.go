package domain

import (
	"errors"
	"strings"
)

var (
	ErrValidation       = errors.New("invoice failed validation")
	ErrNotFound         = errors.New("invoice not found")
	ErrStoreUnavailable = errors.New("invoice store unavailable")
	ErrInvalidPreset    = errors.New("invalid invoice preset")
	ErrUnsupportedAsset = errors.New("unsupported asset")
	ErrNotSaved         = errors.New("invoice has not been saved yet")
)

// ValidationError carries the per-field messages that blocked a save.
type ValidationError struct {
	Fields ValidationErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields.Keys() {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
