package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/rwa-lending/internal/domain/model"
	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
)

// InsurancePricing prices coverage bundles for a loan.
type InsurancePricing struct {
	policy Policy
}

// NewInsurancePricing returns a pricer over the policy's rates and multipliers.
func NewInsurancePricing(p Policy) *InsurancePricing {
	return &InsurancePricing{policy: p}
}

// ComputePremium returns the annual premium for a single bundle:
//
//	loan * tierRate * riskMultiplier * borrowerMultiplier
//	     * (1 + marketMultiplier) * (1 + assetMultiplier)
//
// times the full-coverage factor for the full bundle. Levels outside the
// offered sets price as 0%. The result is not rounded.
func (p *InsurancePricing) ComputePremium(
	loanAmount decimal.Decimal,
	tier valueobject.CreditTier,
	class valueobject.AssetRiskClass,
	borrowerPct, marketPct, assetPct int,
) decimal.Decimal {
	if !loanAmount.IsPositive() {
		return decimal.Zero
	}
	coverage := valueobject.NewCoverage(borrowerPct, marketPct, assetPct)
	return loanAmount.
		Mul(p.policy.tierTerms(tier).InsuranceRate).
		Mul(p.policy.riskTerms(class).PremiumMultiplier).
		Mul(p.premiumFactor(coverage))
}

// premiumFactor is the coverage-dependent part of the premium formula.
func (p *InsurancePricing) premiumFactor(c valueobject.Coverage) decimal.Decimal {
	c = c.Normalize()
	one := decimal.NewFromInt(1)
	factor := p.policy.BorrowerCoverage[c.BorrowerDefault].
		Mul(one.Add(p.policy.MarketCoverage[c.MarketRisk])).
		Mul(one.Add(p.policy.AssetCoverage[c.AssetRisk]))
	if c.Equal(p.policy.FullCoverage) {
		factor = factor.Mul(p.policy.FullCoverageFactor)
	}
	return factor
}

// PremiumFor prices an elected coverage bundle.
func (p *InsurancePricing) PremiumFor(
	loanAmount decimal.Decimal,
	tier valueobject.CreditTier,
	class valueobject.AssetRiskClass,
	c valueobject.Coverage,
) decimal.Decimal {
	return p.ComputePremium(loanAmount, tier, class, c.BorrowerDefault, c.MarketRisk, c.AssetRisk)
}

// EnumerateInsuranceOptions prices the three pre-set bundles in ascending
// coverage. Only the full bundle carries LTV and rate impacts.
func (p *InsurancePricing) EnumerateInsuranceOptions(
	loanAmount decimal.Decimal,
	tier valueobject.CreditTier,
	class valueobject.AssetRiskClass,
) [3]model.InsuranceOption {
	var options [3]model.InsuranceOption
	for i, bundle := range p.policy.Bundles {
		annual := p.PremiumFor(loanAmount, tier, class, bundle).Round(2)
		opt := model.InsuranceOption{
			Coverage:       bundle,
			TotalCoverage:  bundle.Total(),
			AnnualPremium:  annual,
			MonthlyPremium: annual.Div(twelve).Round(2),
			ImpactOnLTV:    decimal.Zero,
			ImpactOnRate:   decimal.Zero,
		}
		if bundle.Equal(p.policy.FullCoverage) {
			opt.ImpactOnLTV = p.policy.FullCoverageLTVImpact
			opt.ImpactOnRate = p.policy.FullCoverageRateImpact
		}
		options[i] = opt
	}
	return options
}
