package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Coverage is the triple of percentages an insurance bundle covers:
// borrower default, market risk and asset risk.
type Coverage struct {
	BorrowerDefault int `json:"borrower_default"`
	MarketRisk      int `json:"market_risk"`
	AssetRisk       int `json:"asset_risk"`
}

// Offered coverage levels per dimension.
var (
	BorrowerDefaultLevels = []int{0, 50, 75, 100}
	MarketRiskLevels      = []int{0, 50, 75}
	AssetRiskLevels       = []int{0, 50, 75}
)

// Pre-set bundles in ascending coverage.
var (
	CoverageBasic    = Coverage{BorrowerDefault: 50}
	CoverageStandard = Coverage{BorrowerDefault: 75, MarketRisk: 50, AssetRisk: 50}
	CoverageFull     = Coverage{BorrowerDefault: 100, MarketRisk: 75, AssetRisk: 75}
)

// NewCoverage builds a Coverage. Levels outside the offered sets are kept as
// given; pricing treats them as 0%.
func NewCoverage(borrowerDefault, marketRisk, assetRisk int) Coverage {
	return Coverage{
		BorrowerDefault: borrowerDefault,
		MarketRisk:      marketRisk,
		AssetRisk:       assetRisk,
	}
}

// Normalize returns a copy where every level outside its offered set is 0.
func (c Coverage) Normalize() Coverage {
	return Coverage{
		BorrowerDefault: offeredOrZero(c.BorrowerDefault, BorrowerDefaultLevels),
		MarketRisk:      offeredOrZero(c.MarketRisk, MarketRiskLevels),
		AssetRisk:       offeredOrZero(c.AssetRisk, AssetRiskLevels),
	}
}

// Total returns the mean coverage across the three dimensions.
func (c Coverage) Total() decimal.Decimal {
	sum := c.BorrowerDefault + c.MarketRisk + c.AssetRisk
	return decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(3)).Round(2)
}

// Equal returns true when all three levels match.
func (c Coverage) Equal(other Coverage) bool { return c == other }

// IsZero returns true when nothing is covered.
func (c Coverage) IsZero() bool { return c == Coverage{} }

// String formats the bundle as "borrower/market/asset", e.g. "100/75/75".
func (c Coverage) String() string {
	return fmt.Sprintf("%d/%d/%d", c.BorrowerDefault, c.MarketRisk, c.AssetRisk)
}

func offeredOrZero(level int, offered []int) int {
	for _, l := range offered {
		if l == level {
			return level
		}
	}
	return 0
}
