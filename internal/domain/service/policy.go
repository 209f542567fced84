package service

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
)

// ErrInvalidPolicy is wrapped by every Policy.Validate failure.
var ErrInvalidPolicy = errors.New("invalid pricing policy")

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// ---------------------------------------------------------------------------
// Policy – the single table of pricing thresholds
// ---------------------------------------------------------------------------

// TierTerms is one row of the credit tier table. LTVs and rates are in
// percentage points; InsuranceRate is a yearly fraction of the loan.
type TierTerms struct {
	Tier          valueobject.CreditTier
	MinScore      float64
	BaseLTV       decimal.Decimal
	BaseRate      decimal.Decimal
	InsuranceRate decimal.Decimal
}

// RiskTerms is one row of the asset risk table. A score belongs to the first
// class whose MaxScore it does not exceed.
type RiskTerms struct {
	Class             valueobject.AssetRiskClass
	MaxScore          float64
	LTVAdjustment     decimal.Decimal
	RateAdjustment    decimal.Decimal
	PremiumMultiplier decimal.Decimal
}

// DiscountRule grants a discount tier to borrowers at or above MinTier whose
// asset falls in one of RiskClasses. An empty RiskClasses matches any class.
type DiscountRule struct {
	RiskClasses    []valueobject.AssetRiskClass
	MinTier        valueobject.CreditTier
	Tier           valueobject.DiscountTier
	LTVAdjustment  decimal.Decimal
	RateAdjustment decimal.Decimal
}

func (r DiscountRule) matches(class valueobject.AssetRiskClass, tier valueobject.CreditTier) bool {
	if !tier.AtLeast(r.MinTier) {
		return false
	}
	if len(r.RiskClasses) == 0 {
		return true
	}
	return slices.ContainsFunc(r.RiskClasses, class.Equal)
}

// ProfileTerms positions one repayment profile relative to the final LTV:
// its down payment target is 100 - finalLTV + DownPaymentOffset.
type ProfileTerms struct {
	Kind              valueobject.ProfileKind
	DownPaymentOffset decimal.Decimal
	DurationMonths    int
	InsuranceRequired bool
}

// Policy holds every threshold and table the engine prices with. Tiers are
// ordered best to worst, risk classes safest to riskiest, discount rules are
// evaluated top-down and profiles run SAFE, BALANCED, MAX_LEVERAGE.
type Policy struct {
	MaxCreditScore float64
	MaxRiskScore   float64

	Tiers       []TierTerms
	RiskClasses []RiskTerms
	Discounts   []DiscountRule

	BorrowerCoverage map[int]decimal.Decimal
	MarketCoverage   map[int]decimal.Decimal
	AssetCoverage    map[int]decimal.Decimal

	Bundles                [3]valueobject.Coverage
	FullCoverage           valueobject.Coverage
	FullCoverageFactor     decimal.Decimal
	FullCoverageLTVImpact  decimal.Decimal
	FullCoverageRateImpact decimal.Decimal

	Profiles          [3]ProfileTerms
	MinDownPaymentPct decimal.Decimal
	MaxLTV            decimal.Decimal
	RateFloor         decimal.Decimal

	// MinAssetValue is the smallest collateral value quoted. Below it,
	// rounding down payments to cents can merge profiles.
	MinAssetValue decimal.Decimal
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// DefaultPolicy returns the house pricing policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxCreditScore: 1000,
		MaxRiskScore:   100,
		Tiers: []TierTerms{
			{Tier: valueobject.CreditTierAPlus, MinScore: 850, BaseLTV: d("70"), BaseRate: d("6.5"), InsuranceRate: d("0.005")},
			{Tier: valueobject.CreditTierA, MinScore: 750, BaseLTV: d("65"), BaseRate: d("7.5"), InsuranceRate: d("0.0075")},
			{Tier: valueobject.CreditTierB, MinScore: 600, BaseLTV: d("55"), BaseRate: d("9.0"), InsuranceRate: d("0.015")},
			{Tier: valueobject.CreditTierC, MinScore: 450, BaseLTV: d("45"), BaseRate: d("11.0"), InsuranceRate: d("0.025")},
			{Tier: valueobject.CreditTierD, MinScore: 0, BaseLTV: d("30"), BaseRate: d("14.0"), InsuranceRate: d("0.04")},
		},
		RiskClasses: []RiskTerms{
			{Class: valueobject.RiskClassSafe, MaxScore: 30, LTVAdjustment: d("5"), RateAdjustment: d("-0.5"), PremiumMultiplier: d("0.8")},
			{Class: valueobject.RiskClassModerate, MaxScore: 60, LTVAdjustment: d("0"), RateAdjustment: d("0"), PremiumMultiplier: d("1.0")},
			{Class: valueobject.RiskClassRisky, MaxScore: 100, LTVAdjustment: d("-10"), RateAdjustment: d("1.5"), PremiumMultiplier: d("1.3")},
		},
		Discounts: []DiscountRule{
			{
				RiskClasses: []valueobject.AssetRiskClass{valueobject.RiskClassSafe},
				MinTier:     valueobject.CreditTierA,
				Tier:        valueobject.DiscountTierTwenty, LTVAdjustment: d("20"), RateAdjustment: d("0.5"),
			},
			{
				RiskClasses: []valueobject.AssetRiskClass{valueobject.RiskClassSafe},
				MinTier:     valueobject.CreditTierD,
				Tier:        valueobject.DiscountTierFifteen, LTVAdjustment: d("15"), RateAdjustment: d("0"),
			},
			{
				RiskClasses: []valueobject.AssetRiskClass{valueobject.RiskClassModerate},
				MinTier:     valueobject.CreditTierA,
				Tier:        valueobject.DiscountTierFifteen, LTVAdjustment: d("15"), RateAdjustment: d("0"),
			},
			{
				MinTier: valueobject.CreditTierB,
				Tier:    valueobject.DiscountTierTen, LTVAdjustment: d("10"), RateAdjustment: d("0"),
			},
		},
		BorrowerCoverage: map[int]decimal.Decimal{0: d("0"), 50: d("0.7"), 75: d("1.0"), 100: d("1.4")},
		MarketCoverage:   map[int]decimal.Decimal{0: d("0"), 50: d("0.3"), 75: d("0.5")},
		AssetCoverage:    map[int]decimal.Decimal{0: d("0"), 50: d("0.2"), 75: d("0.35")},
		Bundles: [3]valueobject.Coverage{
			valueobject.CoverageBasic,
			valueobject.CoverageStandard,
			valueobject.CoverageFull,
		},
		FullCoverage:           valueobject.CoverageFull,
		FullCoverageFactor:     d("0.9"),
		FullCoverageLTVImpact:  d("5"),
		FullCoverageRateImpact: d("-0.25"),
		Profiles: [3]ProfileTerms{
			{Kind: valueobject.ProfileKindSafe, DownPaymentOffset: d("15"), DurationMonths: 36},
			{Kind: valueobject.ProfileKindBalanced, DownPaymentOffset: d("0"), DurationMonths: 36},
			{Kind: valueobject.ProfileKindMaxLeverage, DownPaymentOffset: d("-10"), DurationMonths: 48, InsuranceRequired: true},
		},
		MinDownPaymentPct: d("5"),
		MaxLTV:            d("100"),
		RateFloor:         d("0"),
		MinAssetValue:     d("100"),
	}
}

// clone returns a deep copy so an engine never shares tables with its caller.
func (p Policy) clone() Policy {
	c := p
	c.Tiers = slices.Clone(p.Tiers)
	c.RiskClasses = slices.Clone(p.RiskClasses)
	c.Discounts = make([]DiscountRule, len(p.Discounts))
	for i, r := range p.Discounts {
		r.RiskClasses = slices.Clone(r.RiskClasses)
		c.Discounts[i] = r
	}
	c.BorrowerCoverage = maps.Clone(p.BorrowerCoverage)
	c.MarketCoverage = maps.Clone(p.MarketCoverage)
	c.AssetCoverage = maps.Clone(p.AssetCoverage)
	return c
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// Validate checks the policy keeps every ordering guarantee quotes rely on.
func (p Policy) Validate() error {
	checks := []func() error{
		p.validateTiers,
		p.validateRiskClasses,
		p.validateDiscounts,
		p.validateCoverage,
		p.validateProfiles,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPolicy, err)
		}
	}
	return nil
}

func (p Policy) validateTiers() error {
	want := valueobject.CreditTiers()
	if len(p.Tiers) != len(want) {
		return fmt.Errorf("expected %d credit tiers, got %d", len(want), len(p.Tiers))
	}
	for i, row := range p.Tiers {
		if !row.Tier.Equal(want[i]) {
			return fmt.Errorf("tier row %d is %q, want %q", i, row.Tier, want[i])
		}
		if !row.InsuranceRate.IsPositive() {
			return fmt.Errorf("tier %s: insurance rate must be positive", row.Tier)
		}
		if i == 0 {
			if row.MinScore > p.MaxCreditScore {
				return fmt.Errorf("tier %s: cut-off above max credit score", row.Tier)
			}
			continue
		}
		prev := p.Tiers[i-1]
		if row.MinScore >= prev.MinScore {
			return fmt.Errorf("tier %s: cut-offs must be strictly descending", row.Tier)
		}
		if row.BaseLTV.GreaterThan(prev.BaseLTV) {
			return fmt.Errorf("tier %s: base LTV above better tier", row.Tier)
		}
		if row.BaseRate.LessThan(prev.BaseRate) {
			return fmt.Errorf("tier %s: base rate below better tier", row.Tier)
		}
		if row.InsuranceRate.LessThan(prev.InsuranceRate) {
			return fmt.Errorf("tier %s: insurance rate below better tier", row.Tier)
		}
	}
	if last := p.Tiers[len(p.Tiers)-1]; last.MinScore != 0 {
		return fmt.Errorf("tier %s: lowest cut-off must be 0", last.Tier)
	}
	return nil
}

func (p Policy) validateRiskClasses() error {
	want := valueobject.RiskClasses()
	if len(p.RiskClasses) != len(want) {
		return fmt.Errorf("expected %d risk classes, got %d", len(want), len(p.RiskClasses))
	}
	for i, row := range p.RiskClasses {
		if !row.Class.Equal(want[i]) {
			return fmt.Errorf("risk row %d is %q, want %q", i, row.Class, want[i])
		}
		if !row.PremiumMultiplier.IsPositive() {
			return fmt.Errorf("risk class %s: premium multiplier must be positive", row.Class)
		}
		if i > 0 && row.MaxScore <= p.RiskClasses[i-1].MaxScore {
			return fmt.Errorf("risk class %s: thresholds must be strictly ascending", row.Class)
		}
	}
	if last := p.RiskClasses[len(p.RiskClasses)-1]; last.MaxScore != p.MaxRiskScore {
		return fmt.Errorf("risk class %s: last threshold must equal max risk score", last.Class)
	}
	return nil
}

// validateDiscounts checks a better (class, tier) pair never earns a smaller
// discount than a worse one.
func (p Policy) validateDiscounts() error {
	calc := NewDiscountCalculator(p)
	for _, c1 := range valueobject.RiskClasses() {
		for _, t1 := range valueobject.CreditTiers() {
			lower := calc.ComputeDiscount(c1, t1).DiscountTier.Percent()
			for _, c2 := range valueobject.RiskClasses() {
				for _, t2 := range valueobject.CreditTiers() {
					if !c2.AtLeastAsSafeAs(c1) || !t2.AtLeast(t1) {
						continue
					}
					if got := calc.ComputeDiscount(c2, t2).DiscountTier.Percent(); got < lower {
						return fmt.Errorf("discount for %s/%s (%d%%) below %s/%s (%d%%)",
							c2, t2, got, c1, t1, lower)
					}
				}
			}
		}
	}
	return nil
}

// validateCoverage checks every offered level is priced and that raising any
// single dimension never lowers the premium, full-coverage factor included.
func (p Policy) validateCoverage() error {
	dims := []struct {
		name   string
		levels []int
		table  map[int]decimal.Decimal
	}{
		{"borrower default", valueobject.BorrowerDefaultLevels, p.BorrowerCoverage},
		{"market risk", valueobject.MarketRiskLevels, p.MarketCoverage},
		{"asset risk", valueobject.AssetRiskLevels, p.AssetCoverage},
	}
	for _, dim := range dims {
		for _, l := range dim.levels {
			m, ok := dim.table[l]
			if !ok {
				return fmt.Errorf("%s coverage level %d has no multiplier", dim.name, l)
			}
			if m.IsNegative() {
				return fmt.Errorf("%s coverage level %d has a negative multiplier", dim.name, l)
			}
		}
	}
	if !p.FullCoverageFactor.IsPositive() || p.FullCoverageFactor.GreaterThan(decimal.NewFromInt(1)) {
		return errors.New("full coverage factor must be in (0, 1]")
	}
	for i := 1; i < len(p.Bundles); i++ {
		if p.Bundles[i].Total().LessThanOrEqual(p.Bundles[i-1].Total()) {
			return errors.New("bundles must be in ascending coverage")
		}
	}

	pricing := NewInsurancePricing(p)
	premium := func(c valueobject.Coverage) decimal.Decimal {
		return pricing.premiumFactor(c)
	}
	for _, b := range valueobject.BorrowerDefaultLevels {
		for _, m := range valueobject.MarketRiskLevels {
			for _, a := range valueobject.AssetRiskLevels {
				base := valueobject.NewCoverage(b, m, a)
				for _, next := range steppedUp(base) {
					if premium(next).LessThan(premium(base)) {
						return fmt.Errorf("premium for %s below %s", next, base)
					}
				}
			}
		}
	}
	return nil
}

// steppedUp returns every bundle reachable from c by raising one dimension
// to its next offered level.
func steppedUp(c valueobject.Coverage) []valueobject.Coverage {
	var out []valueobject.Coverage
	if n, ok := nextLevel(c.BorrowerDefault, valueobject.BorrowerDefaultLevels); ok {
		out = append(out, valueobject.NewCoverage(n, c.MarketRisk, c.AssetRisk))
	}
	if n, ok := nextLevel(c.MarketRisk, valueobject.MarketRiskLevels); ok {
		out = append(out, valueobject.NewCoverage(c.BorrowerDefault, n, c.AssetRisk))
	}
	if n, ok := nextLevel(c.AssetRisk, valueobject.AssetRiskLevels); ok {
		out = append(out, valueobject.NewCoverage(c.BorrowerDefault, c.MarketRisk, n))
	}
	return out
}

func nextLevel(level int, levels []int) (int, bool) {
	i := slices.Index(levels, level)
	if i < 0 || i == len(levels)-1 {
		return 0, false
	}
	return levels[i+1], true
}

// validateProfiles checks that for every (tier, class) pair the three down
// payment targets stay strictly ordered inside [MinDownPaymentPct, 100).
func (p Policy) validateProfiles() error {
	want := []valueobject.ProfileKind{
		valueobject.ProfileKindSafe,
		valueobject.ProfileKindBalanced,
		valueobject.ProfileKindMaxLeverage,
	}
	for i, terms := range p.Profiles {
		if !terms.Kind.Equal(want[i]) {
			return fmt.Errorf("profile row %d is %q, want %q", i, terms.Kind, want[i])
		}
		if terms.DurationMonths <= 0 {
			return fmt.Errorf("profile %s: duration must be positive", terms.Kind)
		}
		if terms.InsuranceRequired != terms.Kind.Equal(valueobject.ProfileKindMaxLeverage) {
			return fmt.Errorf("profile %s: only MAX_LEVERAGE requires insurance", terms.Kind)
		}
	}
	if !p.MinDownPaymentPct.IsPositive() {
		return errors.New("minimum down payment must be positive")
	}
	if !p.MinAssetValue.IsPositive() {
		return errors.New("minimum asset value must be positive")
	}

	conditions := NewConditionCalculator(p)
	profiles := NewProfileGenerator(p)
	for _, row := range p.Tiers {
		for _, risk := range p.RiskClasses {
			finalLTV := conditions.finalTerms(row.Tier, risk.Class).ltv
			prev := hundred
			for _, terms := range p.Profiles {
				pct := profiles.downPaymentPct(finalLTV, terms)
				if pct.LessThan(p.MinDownPaymentPct) || !pct.LessThan(prev) {
					return fmt.Errorf("profile %s for %s/%s: down payment target %s%% out of order",
						terms.Kind, row.Tier, risk.Class, pct)
				}
				prev = pct
			}
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// lookups
// ---------------------------------------------------------------------------

func (p Policy) tierTerms(tier valueobject.CreditTier) TierTerms {
	for _, row := range p.Tiers {
		if row.Tier.Equal(tier) {
			return row
		}
	}
	return p.Tiers[len(p.Tiers)-1]
}

func (p Policy) riskTerms(class valueobject.AssetRiskClass) RiskTerms {
	for _, row := range p.RiskClasses {
		if row.Class.Equal(class) {
			return row
		}
	}
	return p.RiskClasses[len(p.RiskClasses)-1]
}
