package valueobject

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// QuoteStatus – immutable value object
// ---------------------------------------------------------------------------

// QuoteStatus represents the lifecycle stage of an issued quote.
type QuoteStatus struct {
	value string
}

const (
	quoteStatusIssued   = "ISSUED"
	quoteStatusAccepted = "ACCEPTED"
	quoteStatusExpired  = "EXPIRED"
)

var (
	QuoteStatusIssued   = QuoteStatus{value: quoteStatusIssued}
	QuoteStatusAccepted = QuoteStatus{value: quoteStatusAccepted}
	QuoteStatusExpired  = QuoteStatus{value: quoteStatusExpired}
)

var validQuoteStatuses = map[string]QuoteStatus{
	quoteStatusIssued:   QuoteStatusIssued,
	quoteStatusAccepted: QuoteStatusAccepted,
	quoteStatusExpired:  QuoteStatusExpired,
}

// NewQuoteStatus creates a QuoteStatus from a raw string.
func NewQuoteStatus(s string) (QuoteStatus, error) {
	v, ok := validQuoteStatuses[s]
	if !ok {
		return QuoteStatus{}, fmt.Errorf("invalid quote status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s QuoteStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s QuoteStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s QuoteStatus) Equal(other QuoteStatus) bool { return s.value == other.value }

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrQuoteExpired            = errors.New("quote has expired")
)
