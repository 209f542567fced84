package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/rwa-lending/internal/domain/model"
	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
)

// ConditionCalculator derives loan conditions from a credit score and an
// asset risk score.
type ConditionCalculator struct {
	policy     Policy
	classifier *TierClassifier
	discounts  *DiscountCalculator
}

// NewConditionCalculator returns a calculator over the policy's tables.
func NewConditionCalculator(p Policy) *ConditionCalculator {
	return &ConditionCalculator{
		policy:     p,
		classifier: NewTierClassifier(p),
		discounts:  NewDiscountCalculator(p),
	}
}

type terms struct {
	ltv  decimal.Decimal
	rate decimal.Decimal
}

type conditionChain struct {
	base, adjusted, final terms
}

// chain runs the ordered adjustments: base from the tier, risk-class
// adjustment, discount, then clamping to [0, MaxLTV] and the rate floor.
// Every stage is clamped so each reported figure stays in bounds.
func (c *ConditionCalculator) chain(tier valueobject.CreditTier, class valueobject.AssetRiskClass) conditionChain {
	row := c.policy.tierTerms(tier)
	risk := c.policy.riskTerms(class)
	discount := c.discounts.ComputeDiscount(class, tier)

	base := c.clamp(terms{ltv: row.BaseLTV, rate: row.BaseRate})
	adjusted := c.clamp(terms{
		ltv:  base.ltv.Add(risk.LTVAdjustment),
		rate: base.rate.Add(risk.RateAdjustment),
	})
	final := c.clamp(terms{
		ltv:  adjusted.ltv.Sub(discount.LTVAdjustment),
		rate: adjusted.rate.Sub(discount.RateAdjustment),
	})
	return conditionChain{base: base, adjusted: adjusted, final: final}
}

func (c *ConditionCalculator) finalTerms(tier valueobject.CreditTier, class valueobject.AssetRiskClass) terms {
	return c.chain(tier, class).final
}

func (c *ConditionCalculator) clamp(t terms) terms {
	ltv := decimal.Min(decimal.Max(t.ltv, decimal.Zero), c.policy.MaxLTV)
	rate := decimal.Max(t.rate, c.policy.RateFloor)
	return terms{ltv: ltv, rate: rate}
}

// ComputeConditions classifies both scores and runs the adjustment chain.
// It never fails: out-of-range and NaN scores are clamped first, and the
// clamped scores are what the conditions report.
func (c *ConditionCalculator) ComputeConditions(creditScore, nftRiskScore float64) model.LoanConditions {
	creditScore = c.classifier.ClampCreditScore(creditScore)
	nftRiskScore = c.classifier.ClampRiskScore(nftRiskScore)

	tier := c.classifier.ClassifyCreditTier(creditScore)
	class := c.classifier.ClassifyAssetRisk(nftRiskScore)
	ch := c.chain(tier, class)

	return model.LoanConditions{
		CreditScore:  creditScore,
		CreditTier:   tier,
		NFTRiskScore: nftRiskScore,
		NFTRiskClass: class,
		BaseLTV:      ch.base.ltv,
		BaseRate:     ch.base.rate,
		AdjustedLTV:  ch.adjusted.ltv,
		AdjustedRate: ch.adjusted.rate,
		FinalLTV:     ch.final.ltv,
		FinalRate:    ch.final.rate,
	}
}
