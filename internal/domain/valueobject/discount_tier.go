package valueobject

import (
	"fmt"
)

// DiscountTier is the asset-backed discount bucket granted to a quote.
type DiscountTier struct {
	value   string
	percent int
}

const (
	discountTierNone    = "NONE"
	discountTierTen     = "10"
	discountTierFifteen = "15"
	discountTierTwenty  = "20"
)

var (
	DiscountTierNone    = DiscountTier{value: discountTierNone, percent: 0}
	DiscountTierTen     = DiscountTier{value: discountTierTen, percent: 10}
	DiscountTierFifteen = DiscountTier{value: discountTierFifteen, percent: 15}
	DiscountTierTwenty  = DiscountTier{value: discountTierTwenty, percent: 20}
)

var validDiscountTiers = map[string]DiscountTier{
	discountTierNone:    DiscountTierNone,
	discountTierTen:     DiscountTierTen,
	discountTierFifteen: DiscountTierFifteen,
	discountTierTwenty:  DiscountTierTwenty,
}

// NewDiscountTier creates a DiscountTier from a raw string.
func NewDiscountTier(s string) (DiscountTier, error) {
	v, ok := validDiscountTiers[s]
	if !ok {
		return DiscountTier{}, fmt.Errorf("invalid discount tier: %q", s)
	}
	return v, nil
}

// String returns the string representation of the tier.
func (d DiscountTier) String() string { return d.value }

// Percent returns the discount percentage (0 for NONE).
func (d DiscountTier) Percent() int { return d.percent }

// IsZero returns true if the tier has not been initialised.
func (d DiscountTier) IsZero() bool { return d.value == "" }

// Equal returns true when both tiers carry the same value.
func (d DiscountTier) Equal(other DiscountTier) bool { return d.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (d DiscountTier) MarshalText() ([]byte, error) { return []byte(d.value), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DiscountTier) UnmarshalText(b []byte) error {
	v, err := NewDiscountTier(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
