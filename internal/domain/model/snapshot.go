package model

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
)

// AssetSnapshot is the collateral view the engine prices against.
type AssetSnapshot struct {
	TokenID   string
	Value     decimal.Decimal
	RiskScore *float64
}

// BorrowerSnapshot is the borrower view the engine prices against. A nil
// Coverage elects the full-coverage bundle.
type BorrowerSnapshot struct {
	BorrowerID  string
	CreditScore *float64
	Coverage    *valueobject.Coverage
}

// Score returns a pointer to v, for filling optional snapshot scores.
func Score(v float64) *float64 { return &v }

// Validate checks the asset is priceable: a positive value and a finite risk score.
func (a AssetSnapshot) Validate() error {
	if !a.Value.IsPositive() {
		return invalidInput("asset_value", "must be positive")
	}
	if a.RiskScore == nil {
		return invalidInput("risk_score", "is required")
	}
	if !isFinite(*a.RiskScore) {
		return invalidInput("risk_score", "must be finite")
	}
	return nil
}

// Validate checks the borrower carries a finite credit score.
func (b BorrowerSnapshot) Validate() error {
	if b.CreditScore == nil {
		return invalidInput("credit_score", "is required")
	}
	if !isFinite(*b.CreditScore) {
		return invalidInput("credit_score", "must be finite")
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
