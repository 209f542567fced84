package valueobject

import (
	"fmt"
)

// ProfileKind identifies one of the three repayment profiles offered per quote.
type ProfileKind struct {
	value string
}

const (
	profileKindSafe        = "SAFE"
	profileKindBalanced    = "BALANCED"
	profileKindMaxLeverage = "MAX_LEVERAGE"
)

var (
	ProfileKindSafe        = ProfileKind{value: profileKindSafe}
	ProfileKindBalanced    = ProfileKind{value: profileKindBalanced}
	ProfileKindMaxLeverage = ProfileKind{value: profileKindMaxLeverage}
)

var validProfileKinds = map[string]ProfileKind{
	profileKindSafe:        ProfileKindSafe,
	profileKindBalanced:    ProfileKindBalanced,
	profileKindMaxLeverage: ProfileKindMaxLeverage,
}

// NewProfileKind creates a ProfileKind from a raw string.
func NewProfileKind(s string) (ProfileKind, error) {
	v, ok := validProfileKinds[s]
	if !ok {
		return ProfileKind{}, fmt.Errorf("invalid profile kind: %q", s)
	}
	return v, nil
}

// String returns the string representation of the kind.
func (k ProfileKind) String() string { return k.value }

// IsZero returns true if the kind has not been initialised.
func (k ProfileKind) IsZero() bool { return k.value == "" }

// Equal returns true when both kinds carry the same value.
func (k ProfileKind) Equal(other ProfileKind) bool { return k.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (k ProfileKind) MarshalText() ([]byte, error) { return []byte(k.value), nil }

// UnmarshalText implements encoding.TextUnmarshaler. An empty input yields
// the zero kind so that "no selection" round-trips.
func (k *ProfileKind) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*k = ProfileKind{}
		return nil
	}
	v, err := NewProfileKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
