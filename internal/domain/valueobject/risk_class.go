package valueobject

import (
	"fmt"
)

// AssetRiskClass summarises the risk of the collateral asset.
// SAFE is the best class, RISKY the worst.
type AssetRiskClass struct {
	value string
	rank  int
}

const (
	riskClassSafe     = "SAFE"
	riskClassModerate = "MODERATE"
	riskClassRisky    = "RISKY"
)

var (
	RiskClassSafe     = AssetRiskClass{value: riskClassSafe, rank: 3}
	RiskClassModerate = AssetRiskClass{value: riskClassModerate, rank: 2}
	RiskClassRisky    = AssetRiskClass{value: riskClassRisky, rank: 1}
)

var validRiskClasses = map[string]AssetRiskClass{
	riskClassSafe:     RiskClassSafe,
	riskClassModerate: RiskClassModerate,
	riskClassRisky:    RiskClassRisky,
}

// RiskClasses lists every class from safest to riskiest.
func RiskClasses() []AssetRiskClass {
	return []AssetRiskClass{RiskClassSafe, RiskClassModerate, RiskClassRisky}
}

// NewAssetRiskClass creates an AssetRiskClass from a raw string.
func NewAssetRiskClass(s string) (AssetRiskClass, error) {
	v, ok := validRiskClasses[s]
	if !ok {
		return AssetRiskClass{}, fmt.Errorf("invalid asset risk class: %q", s)
	}
	return v, nil
}

// String returns the string representation of the class.
func (c AssetRiskClass) String() string { return c.value }

// IsZero returns true if the class has not been initialised.
func (c AssetRiskClass) IsZero() bool { return c.value == "" }

// Equal returns true when both classes carry the same value.
func (c AssetRiskClass) Equal(other AssetRiskClass) bool { return c.value == other.value }

// SaferThan reports whether c is strictly safer than other.
func (c AssetRiskClass) SaferThan(other AssetRiskClass) bool { return c.rank > other.rank }

// AtLeastAsSafeAs reports whether c is the same as or safer than other.
func (c AssetRiskClass) AtLeastAsSafeAs(other AssetRiskClass) bool { return c.rank >= other.rank }

// MarshalText implements encoding.TextMarshaler.
func (c AssetRiskClass) MarshalText() ([]byte, error) { return []byte(c.value), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *AssetRiskClass) UnmarshalText(b []byte) error {
	v, err := NewAssetRiskClass(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
