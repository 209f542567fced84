package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/rwa-lending/internal/domain/model"
)

// ProfileGenerator builds the three repayment profiles offered per quote.
type ProfileGenerator struct {
	policy Policy
}

// NewProfileGenerator returns a generator over the policy's profile terms.
func NewProfileGenerator(p Policy) *ProfileGenerator {
	return &ProfileGenerator{policy: p}
}

// downPaymentPct is 100 - finalLTV + offset, bounded to
// [MinDownPaymentPct, 100].
func (g *ProfileGenerator) downPaymentPct(finalLTV decimal.Decimal, t ProfileTerms) decimal.Decimal {
	pct := hundred.Sub(finalLTV).Add(t.DownPaymentOffset)
	return decimal.Min(decimal.Max(pct, g.policy.MinDownPaymentPct), hundred)
}

// BuildProfiles returns SAFE, BALANCED and MAX_LEVERAGE in that order. For
// every profile loanAmount + downPayment equals assetValue exactly, and
// totalCost never falls below loanAmount. The premium is reported on all
// three but only MAX_LEVERAGE requires it.
func (g *ProfileGenerator) BuildProfiles(
	assetValue decimal.Decimal,
	conditions model.LoanConditions,
	premium decimal.Decimal,
) [3]model.LoanProfileOption {
	var profiles [3]model.LoanProfileOption
	if !assetValue.IsPositive() {
		return profiles
	}

	for i, t := range g.policy.Profiles {
		pct := g.downPaymentPct(conditions.FinalLTV, t)
		downPayment := assetValue.Mul(pct).Div(hundred).Round(2)
		loanAmount := assetValue.Sub(downPayment)

		monthly := model.MonthlyPayment(loanAmount, conditions.FinalRate, t.DurationMonths)
		interest := monthly.Mul(decimal.NewFromInt(int64(t.DurationMonths))).Sub(loanAmount)
		if interest.IsNegative() {
			interest = decimal.Zero
		}

		profiles[i] = model.LoanProfileOption{
			Kind:               t.Kind,
			DownPayment:        downPayment,
			DownPaymentPercent: pct,
			LoanAmount:         loanAmount,
			LTV:                loanAmount.Div(assetValue).Mul(hundred).Round(4),
			InterestRate:       conditions.FinalRate,
			DurationMonths:     t.DurationMonths,
			MonthlyPayment:     monthly,
			TotalCost:          loanAmount.Add(interest),
			InsuranceRequired:  t.InsuranceRequired,
			InsurancePremium:   premium,
		}
	}
	return profiles
}
