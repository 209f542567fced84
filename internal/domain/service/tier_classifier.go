package service

import (
	"math"

	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// TierClassifier – scores to discrete buckets
// ---------------------------------------------------------------------------

// TierClassifier maps credit scores to tiers and asset risk scores to risk
// classes. Out-of-range scores are clamped, never rejected.
type TierClassifier struct {
	policy Policy
}

// NewTierClassifier returns a classifier over the policy's thresholds.
func NewTierClassifier(p Policy) *TierClassifier {
	return &TierClassifier{policy: p}
}

// ClampCreditScore bounds a credit score to [0, MaxCreditScore]. NaN maps to
// 0, the most conservative score.
func (c *TierClassifier) ClampCreditScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Min(math.Max(score, 0), c.policy.MaxCreditScore)
}

// ClampRiskScore bounds an asset risk score to [0, MaxRiskScore]. NaN maps to
// MaxRiskScore, the most conservative score.
func (c *TierClassifier) ClampRiskScore(score float64) float64 {
	if math.IsNaN(score) {
		return c.policy.MaxRiskScore
	}
	return math.Min(math.Max(score, 0), c.policy.MaxRiskScore)
}

// ClassifyCreditTier returns the first tier whose cut-off the clamped score
// reaches:
//
//	score >= 850 -> A+
//	score >= 750 -> A
//	score >= 600 -> B
//	score >= 450 -> C
//	otherwise    -> D
func (c *TierClassifier) ClassifyCreditTier(score float64) valueobject.CreditTier {
	score = c.ClampCreditScore(score)
	for _, row := range c.policy.Tiers {
		if score >= row.MinScore {
			return row.Tier
		}
	}
	return valueobject.CreditTierD
}

// ClassifyAssetRisk returns the first class whose ceiling the clamped score
// does not exceed: SAFE <= 30, MODERATE <= 60, otherwise RISKY.
func (c *TierClassifier) ClassifyAssetRisk(score float64) valueobject.AssetRiskClass {
	score = c.ClampRiskScore(score)
	for _, row := range c.policy.RiskClasses {
		if score <= row.MaxScore {
			return row.Class
		}
	}
	return valueobject.RiskClassRisky
}
