package valueobject

import (
	"fmt"
)

// ---------------------------------------------------------------------------
// CreditTier – immutable, ordered value object
// ---------------------------------------------------------------------------

// CreditTier is a discrete bucket summarising borrower creditworthiness.
// Tiers are ordered: A+ is the best, D the worst.
type CreditTier struct {
	value string
	rank  int
}

const (
	creditTierAPlus = "A+"
	creditTierA     = "A"
	creditTierB     = "B"
	creditTierC     = "C"
	creditTierD     = "D"
)

var (
	CreditTierAPlus = CreditTier{value: creditTierAPlus, rank: 5}
	CreditTierA     = CreditTier{value: creditTierA, rank: 4}
	CreditTierB     = CreditTier{value: creditTierB, rank: 3}
	CreditTierC     = CreditTier{value: creditTierC, rank: 2}
	CreditTierD     = CreditTier{value: creditTierD, rank: 1}
)

var validCreditTiers = map[string]CreditTier{
	creditTierAPlus: CreditTierAPlus,
	creditTierA:     CreditTierA,
	creditTierB:     CreditTierB,
	creditTierC:     CreditTierC,
	creditTierD:     CreditTierD,
}

// CreditTiers lists every tier from best to worst.
func CreditTiers() []CreditTier {
	return []CreditTier{CreditTierAPlus, CreditTierA, CreditTierB, CreditTierC, CreditTierD}
}

// NewCreditTier creates a CreditTier from a raw string.
func NewCreditTier(s string) (CreditTier, error) {
	v, ok := validCreditTiers[s]
	if !ok {
		return CreditTier{}, fmt.Errorf("invalid credit tier: %q", s)
	}
	return v, nil
}

// String returns the string representation of the tier.
func (t CreditTier) String() string { return t.value }

// IsZero returns true if the tier has not been initialised.
func (t CreditTier) IsZero() bool { return t.value == "" }

// Equal returns true when both tiers carry the same value.
func (t CreditTier) Equal(other CreditTier) bool { return t.value == other.value }

// Better reports whether t is strictly better than other.
func (t CreditTier) Better(other CreditTier) bool { return t.rank > other.rank }

// AtLeast reports whether t is the same as or better than other.
func (t CreditTier) AtLeast(other CreditTier) bool { return t.rank >= other.rank }

// MarshalText implements encoding.TextMarshaler.
func (t CreditTier) MarshalText() ([]byte, error) { return []byte(t.value), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *CreditTier) UnmarshalText(b []byte) error {
	v, err := NewCreditTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
