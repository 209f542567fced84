package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/rwa-lending/internal/domain/model"
	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
)

// DiscountCalculator grants the asset-backed discount for a risk class and
// credit tier.
type DiscountCalculator struct {
	policy Policy
}

// NewDiscountCalculator returns a calculator over the policy's discount rules.
func NewDiscountCalculator(p Policy) *DiscountCalculator {
	return &DiscountCalculator{policy: p}
}

// ComputeDiscount evaluates the rules top-down; the first match wins.
//
//	SAFE and A+/A               -> 20%, LTV -20, rate -0.5
//	SAFE, or MODERATE and A+/A  -> 15%, LTV -15
//	tier B or better            -> 10%, LTV -10
//	otherwise                   -> NONE
func (c *DiscountCalculator) ComputeDiscount(
	class valueobject.AssetRiskClass,
	tier valueobject.CreditTier,
) model.DiscountSummary {
	for _, rule := range c.policy.Discounts {
		if rule.matches(class, tier) {
			return model.DiscountSummary{
				DiscountTier:   rule.Tier,
				LTVAdjustment:  rule.LTVAdjustment,
				RateAdjustment: rule.RateAdjustment,
			}
		}
	}
	return model.DiscountSummary{
		DiscountTier:   valueobject.DiscountTierNone,
		LTVAdjustment:  decimal.Zero,
		RateAdjustment: decimal.Zero,
	}
}
