package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/rwa-lending/internal/domain/model"
	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Engine – quote orchestration over one validated policy
// ---------------------------------------------------------------------------

// Engine sequences classification, conditions, discount, insurance and
// profiles into one consistent quote. It holds only its policy tables and is
// safe for concurrent use.
type Engine struct {
	policy     Policy
	classifier *TierClassifier
	conditions *ConditionCalculator
	discounts  *DiscountCalculator
	insurance  *InsurancePricing
	profiles   *ProfileGenerator
}

// NewEngine returns an engine over DefaultPolicy.
func NewEngine() *Engine {
	e, err := NewEngineWithPolicy(DefaultPolicy())
	if err != nil {
		panic(fmt.Sprintf("default pricing policy: %v", err))
	}
	return e
}

// NewEngineWithPolicy validates p and returns an engine over a private copy.
func NewEngineWithPolicy(p Policy) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.clone()
	return &Engine{
		policy:     p,
		classifier: NewTierClassifier(p),
		conditions: NewConditionCalculator(p),
		discounts:  NewDiscountCalculator(p),
		insurance:  NewInsurancePricing(p),
		profiles:   NewProfileGenerator(p),
	}, nil
}

// Policy returns a copy of the engine's policy.
func (e *Engine) Policy() Policy { return e.policy.clone() }

// ClassifyCreditTier buckets a credit score, clamped to [0, 1000].
func (e *Engine) ClassifyCreditTier(score float64) valueobject.CreditTier {
	return e.classifier.ClassifyCreditTier(score)
}

// ClassifyAssetRisk buckets an asset risk score, clamped to [0, 100].
func (e *Engine) ClassifyAssetRisk(score float64) valueobject.AssetRiskClass {
	return e.classifier.ClassifyAssetRisk(score)
}

// ComputeConditions derives base, adjusted and final LTV and rate.
func (e *Engine) ComputeConditions(creditScore, nftRiskScore float64) model.LoanConditions {
	return e.conditions.ComputeConditions(creditScore, nftRiskScore)
}

// ComputeDiscount returns the asset-backed discount for a class and tier.
func (e *Engine) ComputeDiscount(class valueobject.AssetRiskClass, tier valueobject.CreditTier) model.DiscountSummary {
	return e.discounts.ComputeDiscount(class, tier)
}

// EnumerateInsuranceOptions prices the BASIC, STANDARD and FULL bundles.
func (e *Engine) EnumerateInsuranceOptions(
	loanAmount decimal.Decimal,
	tier valueobject.CreditTier,
	class valueobject.AssetRiskClass,
) [3]model.InsuranceOption {
	return e.insurance.EnumerateInsuranceOptions(loanAmount, tier, class)
}

// ComputePremium prices one coverage bundle. Unknown levels count as 0%.
func (e *Engine) ComputePremium(
	loanAmount decimal.Decimal,
	tier valueobject.CreditTier,
	class valueobject.AssetRiskClass,
	borrowerPct, marketPct, assetPct int,
) decimal.Decimal {
	return e.insurance.ComputePremium(loanAmount, tier, class, borrowerPct, marketPct, assetPct)
}

// BuildProfiles returns the SAFE, BALANCED and MAX_LEVERAGE profiles.
func (e *Engine) BuildProfiles(
	assetValue decimal.Decimal,
	conditions model.LoanConditions,
	premium decimal.Decimal,
) [3]model.LoanProfileOption {
	return e.profiles.BuildProfiles(assetValue, conditions, premium)
}

// Quote prices one asset for one borrower. Missing or non-finite inputs and
// an asset value below the policy minimum fail with *model.InvalidInputError;
// nothing else can fail.
//
// The insurance menu and the elected premium are priced on the reference
// loan at the final LTV. A borrower without a coverage election gets the full
// bundle.
func (e *Engine) Quote(asset model.AssetSnapshot, borrower model.BorrowerSnapshot) (model.QuoteResult, error) {
	if err := asset.Validate(); err != nil {
		return model.QuoteResult{}, err
	}
	if err := borrower.Validate(); err != nil {
		return model.QuoteResult{}, err
	}
	if asset.Value.LessThan(e.policy.MinAssetValue) {
		return model.QuoteResult{}, &model.InvalidInputError{
			Field:  "asset_value",
			Reason: "must be at least " + e.policy.MinAssetValue.String(),
		}
	}

	conditions := e.ComputeConditions(*borrower.CreditScore, *asset.RiskScore)
	tier, class := conditions.CreditTier, conditions.NFTRiskClass
	discount := e.ComputeDiscount(class, tier)

	reference := e.ReferenceLoan(asset.Value, conditions)
	options := e.EnumerateInsuranceOptions(reference, tier, class)

	elected := e.policy.FullCoverage
	if borrower.Coverage != nil {
		elected = borrower.Coverage.Normalize()
	}
	premium := e.insurance.PremiumFor(reference, tier, class, elected).Round(2)

	profiles := e.BuildProfiles(asset.Value, conditions, premium)
	if !strictlyOrdered(profiles) {
		return model.QuoteResult{}, &model.InvalidInputError{
			Field:  "asset_value",
			Reason: "too small to separate the repayment profiles",
		}
	}

	return model.QuoteResult{
		Conditions:       conditions,
		Discount:         discount,
		InsuranceOptions: options,
		Profiles:         profiles,
		ElectedCoverage:  elected,
		ElectedPremium:   premium,
		Recommended:      valueobject.ProfileKindBalanced,
	}, nil
}

// ReferenceLoan is the loan amount at the final LTV, rounded to cents.
func (e *Engine) ReferenceLoan(assetValue decimal.Decimal, conditions model.LoanConditions) decimal.Decimal {
	return assetValue.Mul(conditions.FinalLTV).Div(hundred).Round(2)
}

// strictlyOrdered reports whether down payments fall and LTVs rise from SAFE
// to MAX_LEVERAGE after rounding to cents.
func strictlyOrdered(profiles [3]model.LoanProfileOption) bool {
	for i := 1; i < len(profiles); i++ {
		if !profiles[i].DownPayment.LessThan(profiles[i-1].DownPayment) ||
			!profiles[i].LTV.GreaterThan(profiles[i-1].LTV) {
			return false
		}
	}
	return true
}
