package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/rwa-lending/internal/application/dto"
	"github.com/bibbank/rwa-lending/internal/domain/model"
	"github.com/bibbank/rwa-lending/internal/domain/service"
)

var twelve = decimal.NewFromInt(12)

// PriceCoverageUseCase prices an arbitrary coverage bundle without issuing a
// quote.
type PriceCoverageUseCase struct {
	engine *service.Engine
}

// NewPriceCoverageUseCase wires dependencies.
func NewPriceCoverageUseCase(engine *service.Engine) *PriceCoverageUseCase {
	return &PriceCoverageUseCase{engine: engine}
}

// Execute classifies the scores (clamping them) and prices the bundle. A
// missing or non-finite score is invalid input.
// Levels outside the offered sets are priced, and reported, as 0%.
func (uc *PriceCoverageUseCase) Execute(
	_ context.Context,
	req dto.PriceCoverageRequest,
) (dto.PriceCoverageResponse, error) {
	if !req.LoanAmount.IsPositive() {
		return dto.PriceCoverageResponse{}, fmt.Errorf("validate request: %w",
			&model.InvalidInputError{Field: "loan_amount", Reason: "must be positive"})
	}

	if err := requiredScore("credit_score", req.CreditScore); err != nil {
		return dto.PriceCoverageResponse{}, fmt.Errorf("validate request: %w", err)
	}
	if err := requiredScore("risk_score", req.RiskScore); err != nil {
		return dto.PriceCoverageResponse{}, fmt.Errorf("validate request: %w", err)
	}

	tier := uc.engine.ClassifyCreditTier(*req.CreditScore)
	class := uc.engine.ClassifyAssetRisk(*req.RiskScore)
	coverage := fromCoverageElection(req.Coverage).Normalize()

	annual := uc.engine.ComputePremium(
		req.LoanAmount, tier, class,
		coverage.BorrowerDefault, coverage.MarketRisk, coverage.AssetRisk,
	).Round(2)

	return dto.PriceCoverageResponse{
		CreditTier:     tier.String(),
		RiskClass:      class.String(),
		Coverage:       toCoverageElection(coverage),
		AnnualPremium:  annual,
		MonthlyPremium: annual.Div(twelve).Round(2),
	}, nil
}
