package service_test

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/rwa-lending/internal/domain/model"
	"github.com/bibbank/rwa-lending/internal/domain/service"
	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
)

func asset(value int64, risk float64) model.AssetSnapshot {
	return model.AssetSnapshot{
		TokenID:   "token-001",
		Value:     decimal.NewFromInt(value),
		RiskScore: model.Score(risk),
	}
}

func borrower(credit float64) model.BorrowerSnapshot {
	return model.BorrowerSnapshot{BorrowerID: "borrower-001", CreditScore: model.Score(credit)}
}

func TestEngine_Quote(t *testing.T) {
	engine := service.NewEngine()

	t.Run("scenario A end to end", func(t *testing.T) {
		result, err := engine.Quote(asset(100_000, 20), borrower(750))
		require.NoError(t, err)

		c := result.Conditions
		assert.Equal(t, valueobject.CreditTierA, c.CreditTier)
		assert.Equal(t, valueobject.RiskClassSafe, c.NFTRiskClass)
		assertDecimal(t, "50", c.FinalLTV)
		assertDecimal(t, "6.5", c.FinalRate)

		assert.Equal(t, valueobject.DiscountTierTwenty, result.Discount.DiscountTier)
		assert.Equal(t, valueobject.ProfileKindBalanced, result.Recommended)

		// menu priced on the 50,000 reference loan; full bundle elected by default
		assert.Equal(t, valueobject.CoverageFull, result.ElectedCoverage)
		assertDecimal(t, "765.45", result.ElectedPremium)
		assertDecimal(t, "765.45", result.InsuranceOptions[2].AnnualPremium)

		for _, p := range result.Profiles {
			assertDecimal(t, "765.45", p.InsurancePremium)
			assert.True(t, p.LoanAmount.Add(p.DownPayment).Equal(decimal.NewFromInt(100_000)))
		}
		balanced, ok := result.Profile(valueobject.ProfileKindBalanced)
		require.True(t, ok)
		assertDecimal(t, "50000", balanced.LoanAmount)
	})

	t.Run("honours an explicit coverage election", func(t *testing.T) {
		b := borrower(750)
		basic := valueobject.CoverageBasic
		b.Coverage = &basic

		result, err := engine.Quote(asset(100_000, 20), b)
		require.NoError(t, err)
		assert.Equal(t, valueobject.CoverageBasic, result.ElectedCoverage)
		assertDecimal(t, "210", result.ElectedPremium)
	})

	t.Run("unknown coverage levels are elected as 0%", func(t *testing.T) {
		b := borrower(750)
		odd := valueobject.NewCoverage(100, 60, 75)
		b.Coverage = &odd

		result, err := engine.Quote(asset(100_000, 20), b)
		require.NoError(t, err)
		assert.Equal(t, valueobject.NewCoverage(100, 0, 75), result.ElectedCoverage)
	})

	t.Run("clamped scores are not errors", func(t *testing.T) {
		result, err := engine.Quote(asset(100_000, 150), borrower(5000))
		require.NoError(t, err)
		assert.Equal(t, valueobject.CreditTierAPlus, result.Conditions.CreditTier)
		assert.Equal(t, valueobject.RiskClassRisky, result.Conditions.NFTRiskClass)
		assert.Equal(t, 1000.0, result.Conditions.CreditScore)
		assert.Equal(t, 100.0, result.Conditions.NFTRiskScore)
	})

	t.Run("is deterministic", func(t *testing.T) {
		first, err := engine.Quote(asset(250_000, 42), borrower(640))
		require.NoError(t, err)
		second, err := engine.Quote(asset(250_000, 42), borrower(640))
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestEngine_Quote_InvalidInput(t *testing.T) {
	engine := service.NewEngine()

	tests := []struct {
		name     string
		asset    model.AssetSnapshot
		borrower model.BorrowerSnapshot
		field    string
	}{
		{"zero asset value", asset(0, 20), borrower(700), "asset_value"},
		{"negative asset value", asset(-5, 20), borrower(700), "asset_value"},
		{"missing risk score", model.AssetSnapshot{Value: decimal.NewFromInt(10)}, borrower(700), "risk_score"},
		{"NaN risk score", asset(10, math.NaN()), borrower(700), "risk_score"},
		{"missing credit score", asset(10, 20), model.BorrowerSnapshot{}, "credit_score"},
		{"infinite credit score", asset(10, 20), borrower(math.Inf(-1)), "credit_score"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Quote(tt.asset, tt.borrower)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrInvalidInput))

			var iie *model.InvalidInputError
			require.ErrorAs(t, err, &iie)
			assert.Equal(t, tt.field, iie.Field)
		})
	}
}

func TestEngine_Quote_Properties(t *testing.T) {
	engine := service.NewEngine()

	for credit := 0.0; credit <= 1000; credit += 50 {
		for risk := 0.0; risk <= 100; risk += 10 {
			for _, value := range []int64{100, 1_000, 300_000, 2_500_000} {
				result, err := engine.Quote(asset(value, risk), borrower(credit))
				require.NoError(t, err)

				c := result.Conditions
				assert.False(t, c.FinalLTV.IsNegative())
				assert.False(t, c.FinalLTV.GreaterThan(decimal.NewFromInt(100)))
				assert.False(t, c.FinalRate.IsNegative())

				for i, p := range result.Profiles {
					assert.True(t, p.LoanAmount.Add(p.DownPayment).Equal(decimal.NewFromInt(value)))
					assert.False(t, p.TotalCost.LessThan(p.LoanAmount))
					if i > 0 {
						assert.True(t, p.DownPaymentPercent.LessThan(result.Profiles[i-1].DownPaymentPercent))
						assert.True(t, p.LTV.GreaterThan(result.Profiles[i-1].LTV))
					}
				}
				assert.True(t, result.Profiles[2].InsuranceRequired)
			}
		}
	}
}

func TestEngine_Quote_SmallAssetValues(t *testing.T) {
	engine := service.NewEngine()

	for _, value := range []string{"0.01", "0.05", "0.5", "1", "3", "99.99"} {
		t.Run(value, func(t *testing.T) {
			a := model.AssetSnapshot{TokenID: "token-001", Value: dec(value), RiskScore: model.Score(20)}

			_, err := engine.Quote(a, borrower(750))

			var iie *model.InvalidInputError
			require.ErrorAs(t, err, &iie)
			assert.Equal(t, "asset_value", iie.Field)
		})
	}

	t.Run("cent rounding that merges profiles is rejected", func(t *testing.T) {
		p := service.DefaultPolicy()
		p.MinAssetValue = dec("0.01")
		lenient, err := service.NewEngineWithPolicy(p)
		require.NoError(t, err)

		a := model.AssetSnapshot{TokenID: "token-001", Value: dec("0.05"), RiskScore: model.Score(20)}
		_, err = lenient.Quote(a, borrower(750))

		var iie *model.InvalidInputError
		require.ErrorAs(t, err, &iie)
		assert.Equal(t, "asset_value", iie.Field)
		assert.Contains(t, iie.Reason, "repayment profiles")
	})

	t.Run("the minimum itself prices with distinct profiles", func(t *testing.T) {
		result, err := engine.Quote(asset(100, 20), borrower(750))
		require.NoError(t, err)
		for i := 1; i < len(result.Profiles); i++ {
			assert.True(t, result.Profiles[i].DownPayment.LessThan(result.Profiles[i-1].DownPayment))
			assert.True(t, result.Profiles[i].LTV.GreaterThan(result.Profiles[i-1].LTV))
		}
	})
}

func TestEngine_ConcurrentQuotes(t *testing.T) {
	engine := service.NewEngine()
	want, err := engine.Quote(asset(480_000, 35), borrower(810))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]model.QuoteResult, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = engine.Quote(asset(480_000, 35), borrower(810))
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestEngine_DelegatesToCalculators(t *testing.T) {
	engine := service.NewEngine()

	assert.Equal(t, valueobject.CreditTierC, engine.ClassifyCreditTier(500))
	assert.Equal(t, valueobject.RiskClassModerate, engine.ClassifyAssetRisk(50))
	assert.Equal(t, valueobject.DiscountTierNone,
		engine.ComputeDiscount(valueobject.RiskClassRisky, valueobject.CreditTierD).DiscountTier)
	assertDecimal(t, "1071.63", engine.ComputePremium(decimal.NewFromInt(70_000),
		valueobject.CreditTierA, valueobject.RiskClassSafe, 100, 75, 75))

	c := engine.ComputeConditions(750, 20)
	assertDecimal(t, "150000", engine.ReferenceLoan(decimal.NewFromInt(300_000), c))
	assert.Len(t, engine.EnumerateInsuranceOptions(decimal.NewFromInt(1000), c.CreditTier, c.NFTRiskClass), 3)
	assert.Len(t, engine.BuildProfiles(decimal.NewFromInt(1000), c, decimal.Zero), 3)
}
