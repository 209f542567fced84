package model

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
)

// LoanConditions is the immutable result of the condition calculation.
// LTVs and rates are in percentage points (65 means 65%).
type LoanConditions struct {
	CreditScore  float64                    `json:"credit_score"`
	CreditTier   valueobject.CreditTier     `json:"credit_tier"`
	NFTRiskScore float64                    `json:"nft_risk_score"`
	NFTRiskClass valueobject.AssetRiskClass `json:"nft_risk_class"`
	BaseLTV      decimal.Decimal            `json:"base_ltv"`
	BaseRate     decimal.Decimal            `json:"base_rate"`
	AdjustedLTV  decimal.Decimal            `json:"adjusted_ltv"`
	AdjustedRate decimal.Decimal            `json:"adjusted_rate"`
	FinalLTV     decimal.Decimal            `json:"final_ltv"`
	FinalRate    decimal.Decimal            `json:"final_rate"`
}

// DiscountSummary is the asset-backed discount granted for a risk class and tier.
type DiscountSummary struct {
	DiscountTier   valueobject.DiscountTier `json:"discount_tier"`
	LTVAdjustment  decimal.Decimal          `json:"ltv_adjustment"`
	RateAdjustment decimal.Decimal          `json:"rate_adjustment"`
}

// InsuranceOption is one priced coverage bundle.
type InsuranceOption struct {
	Coverage       valueobject.Coverage `json:"coverage"`
	TotalCoverage  decimal.Decimal      `json:"total_coverage"`
	AnnualPremium  decimal.Decimal      `json:"annual_premium"`
	MonthlyPremium decimal.Decimal      `json:"monthly_premium"`
	ImpactOnLTV    decimal.Decimal      `json:"impact_on_ltv"`
	ImpactOnRate   decimal.Decimal      `json:"impact_on_rate"`
}

// LoanProfileOption is one borrower-selectable repayment profile.
type LoanProfileOption struct {
	Kind               valueobject.ProfileKind `json:"kind"`
	DownPayment        decimal.Decimal         `json:"down_payment"`
	DownPaymentPercent decimal.Decimal         `json:"down_payment_percent"`
	LoanAmount         decimal.Decimal         `json:"loan_amount"`
	LTV                decimal.Decimal         `json:"ltv"`
	InterestRate       decimal.Decimal         `json:"interest_rate"`
	DurationMonths     int                     `json:"duration_months"`
	MonthlyPayment     decimal.Decimal         `json:"monthly_payment"`
	TotalCost          decimal.Decimal         `json:"total_cost"`
	InsuranceRequired  bool                    `json:"insurance_required"`
	InsurancePremium   decimal.Decimal         `json:"insurance_premium"`
}

// QuoteResult is the single consistent snapshot produced per quote request.
type QuoteResult struct {
	Conditions       LoanConditions          `json:"conditions"`
	Discount         DiscountSummary         `json:"discount"`
	InsuranceOptions [3]InsuranceOption      `json:"insurance_options"`
	Profiles         [3]LoanProfileOption    `json:"profiles"`
	ElectedCoverage  valueobject.Coverage    `json:"elected_coverage"`
	ElectedPremium   decimal.Decimal         `json:"elected_premium"`
	Recommended      valueobject.ProfileKind `json:"recommended"`
}

// Profile returns the profile of the given kind.
func (r QuoteResult) Profile(kind valueobject.ProfileKind) (LoanProfileOption, bool) {
	for _, p := range r.Profiles {
		if p.Kind.Equal(kind) {
			return p, true
		}
	}
	return LoanProfileOption{}, false
}
