package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is matched by every InvalidInputError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrQuoteNotFound is returned by repositories when no quote matches.
	ErrQuoteNotFound = errors.New("quote not found")
	// ErrAssetNotFound is returned by asset catalogs for unknown tokens.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrBorrowerNotFound is returned by credit providers for unknown borrowers.
	ErrBorrowerNotFound = errors.New("borrower not found")
	// ErrVersionConflict is returned when a quote changed since it was loaded.
	ErrVersionConflict = errors.New("quote was modified concurrently")
)

// InvalidInputError reports a required input that is missing, non-finite or
// outside a domain that cannot be clamped.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

func invalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}
