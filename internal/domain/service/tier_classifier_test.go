package service_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bibbank/rwa-lending/internal/domain/service"
	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
)

func TestTierClassifier_ClassifyCreditTier(t *testing.T) {
	c := service.NewTierClassifier(service.DefaultPolicy())

	tests := []struct {
		score float64
		want  valueobject.CreditTier
	}{
		{1000, valueobject.CreditTierAPlus},
		{850, valueobject.CreditTierAPlus},
		{849.99, valueobject.CreditTierA},
		{750, valueobject.CreditTierA},
		{749, valueobject.CreditTierB},
		{600, valueobject.CreditTierB},
		{599.5, valueobject.CreditTierC},
		{450, valueobject.CreditTierC},
		{449, valueobject.CreditTierD},
		{0, valueobject.CreditTierD},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.ClassifyCreditTier(tt.score), "score %v", tt.score)
	}
}

func TestTierClassifier_CreditTierMonotonic(t *testing.T) {
	c := service.NewTierClassifier(service.DefaultPolicy())

	prev := c.ClassifyCreditTier(-100)
	for s := -100.0; s <= 1100; s += 0.5 {
		got := c.ClassifyCreditTier(s)
		assert.False(t, prev.Better(got), "tier at %v (%s) worse than at lower score (%s)", s, got, prev)
		prev = got
	}
}

func TestTierClassifier_Clamping(t *testing.T) {
	c := service.NewTierClassifier(service.DefaultPolicy())

	assert.Equal(t, c.ClassifyCreditTier(0), c.ClassifyCreditTier(-50))
	assert.Equal(t, c.ClassifyCreditTier(1000), c.ClassifyCreditTier(5000))
	assert.Equal(t, valueobject.CreditTierD, c.ClassifyCreditTier(math.NaN()))
	assert.Equal(t, valueobject.CreditTierAPlus, c.ClassifyCreditTier(math.Inf(1)))

	assert.Equal(t, 1000.0, c.ClampCreditScore(1050))
	assert.Equal(t, 0.0, c.ClampCreditScore(math.NaN()))
	assert.Equal(t, 100.0, c.ClampRiskScore(math.NaN()))
	assert.Equal(t, 0.0, c.ClampRiskScore(-3))

	// clamping twice changes nothing
	for _, s := range []float64{-50, 0, 420, 1000, 5000} {
		once := c.ClampCreditScore(s)
		assert.Equal(t, once, c.ClampCreditScore(once))
	}
}

func TestTierClassifier_ClassifyAssetRisk(t *testing.T) {
	c := service.NewTierClassifier(service.DefaultPolicy())

	tests := []struct {
		score float64
		want  valueobject.AssetRiskClass
	}{
		{-10, valueobject.RiskClassSafe},
		{0, valueobject.RiskClassSafe},
		{30, valueobject.RiskClassSafe},
		{30.01, valueobject.RiskClassModerate},
		{60, valueobject.RiskClassModerate},
		{60.5, valueobject.RiskClassRisky},
		{100, valueobject.RiskClassRisky},
		{250, valueobject.RiskClassRisky},
		{math.NaN(), valueobject.RiskClassRisky},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.ClassifyAssetRisk(tt.score), "score %v", tt.score)
	}
}
