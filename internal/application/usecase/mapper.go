package usecase

import (
	"math"

	"github.com/bibbank/rwa-lending/internal/application/dto"
	"github.com/bibbank/rwa-lending/internal/domain/model"
	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
)

func toQuoteResponse(q model.Quote) dto.QuoteResponse {
	r := q.Result()
	c := r.Conditions

	options := make([]dto.InsuranceOptionResponse, 0, len(r.InsuranceOptions))
	for _, o := range r.InsuranceOptions {
		options = append(options, dto.InsuranceOptionResponse{
			Coverage:       toCoverageElection(o.Coverage),
			TotalCoverage:  o.TotalCoverage,
			AnnualPremium:  o.AnnualPremium,
			MonthlyPremium: o.MonthlyPremium,
			ImpactOnLTV:    o.ImpactOnLTV,
			ImpactOnRate:   o.ImpactOnRate,
		})
	}

	profiles := make([]dto.ProfileResponse, 0, len(r.Profiles))
	for _, p := range r.Profiles {
		profiles = append(profiles, dto.ProfileResponse{
			Kind:               p.Kind.String(),
			DownPayment:        p.DownPayment,
			DownPaymentPercent: p.DownPaymentPercent,
			LoanAmount:         p.LoanAmount,
			LTV:                p.LTV,
			InterestRate:       p.InterestRate,
			DurationMonths:     p.DurationMonths,
			MonthlyPayment:     p.MonthlyPayment,
			TotalCost:          p.TotalCost,
			InsuranceRequired:  p.InsuranceRequired,
			InsurancePremium:   p.InsurancePremium,
		})
	}

	return dto.QuoteResponse{
		ID:              q.ID(),
		TenantID:        q.TenantID(),
		BorrowerID:      q.BorrowerID(),
		TokenID:         q.TokenID(),
		AssetValue:      q.AssetValue(),
		Currency:        q.Currency(),
		Status:          q.Status().String(),
		SelectedProfile: q.SelectedProfile().String(),
		Conditions: dto.ConditionsResponse{
			CreditScore:  c.CreditScore,
			CreditTier:   c.CreditTier.String(),
			NFTRiskScore: c.NFTRiskScore,
			NFTRiskClass: c.NFTRiskClass.String(),
			BaseLTV:      c.BaseLTV,
			BaseRate:     c.BaseRate,
			AdjustedLTV:  c.AdjustedLTV,
			AdjustedRate: c.AdjustedRate,
			FinalLTV:     c.FinalLTV,
			FinalRate:    c.FinalRate,
		},
		Discount: dto.DiscountResponse{
			DiscountTier:   r.Discount.DiscountTier.String(),
			LTVAdjustment:  r.Discount.LTVAdjustment,
			RateAdjustment: r.Discount.RateAdjustment,
		},
		InsuranceOptions: options,
		Profiles:         profiles,
		ElectedCoverage:  toCoverageElection(r.ElectedCoverage),
		ElectedPremium:   r.ElectedPremium,
		Recommended:      r.Recommended.String(),
		ExpiresAt:        q.ExpiresAt(),
		CreatedAt:        q.CreatedAt(),
		UpdatedAt:        q.UpdatedAt(),
	}
}

func toScheduleResponse(entries []model.AmortizationEntry) []dto.AmortizationEntryResponse {
	out := make([]dto.AmortizationEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.AmortizationEntryResponse{
			Period:           e.Period,
			DueDate:          e.DueDate,
			Principal:        e.Principal,
			Interest:         e.Interest,
			Total:            e.Total,
			RemainingBalance: e.RemainingBalance,
		})
	}
	return out
}

func toCoverageElection(c valueobject.Coverage) dto.CoverageElection {
	return dto.CoverageElection{
		BorrowerDefault: c.BorrowerDefault,
		MarketRisk:      c.MarketRisk,
		AssetRisk:       c.AssetRisk,
	}
}

func fromCoverageElection(c dto.CoverageElection) valueobject.Coverage {
	return valueobject.NewCoverage(c.BorrowerDefault, c.MarketRisk, c.AssetRisk)
}

func required(field, value string) error {
	if value == "" {
		return &model.InvalidInputError{Field: field, Reason: "is required"}
	}
	return nil
}

func requiredScore(field string, score *float64) error {
	switch {
	case score == nil:
		return &model.InvalidInputError{Field: field, Reason: "is required"}
	case math.IsNaN(*score) || math.IsInf(*score, 0):
		return &model.InvalidInputError{Field: field, Reason: "must be finite"}
	}
	return nil
}
