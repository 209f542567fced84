package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// CoverageElection is a borrower's choice of insurance levels in percent.
type CoverageElection struct {
	BorrowerDefault int `json:"borrower_default"`
	MarketRisk      int `json:"market_risk"`
	AssetRisk       int `json:"asset_risk"`
}

// RequestQuoteRequest carries the data needed to price a tokenized asset for
// a borrower. A nil Coverage elects the full bundle.
type RequestQuoteRequest struct {
	TenantID   string            `json:"tenant_id"`
	BorrowerID string            `json:"borrower_id"`
	TokenID    string            `json:"token_id"`
	Coverage   *CoverageElection `json:"coverage,omitempty"`
}

// GetQuoteRequest identifies a quote to retrieve. A non-empty BorrowerID
// restricts the lookup to that borrower's quotes.
type GetQuoteRequest struct {
	TenantID   string `json:"tenant_id"`
	QuoteID    string `json:"quote_id"`
	BorrowerID string `json:"borrower_id,omitempty"`
}

// ListQuotesRequest identifies a borrower whose quotes to list.
type ListQuotesRequest struct {
	TenantID   string `json:"tenant_id"`
	BorrowerID string `json:"borrower_id"`
}

// AcceptQuoteRequest selects one repayment profile on an issued quote. A
// non-empty BorrowerID restricts acceptance to that borrower's quotes.
type AcceptQuoteRequest struct {
	TenantID   string `json:"tenant_id"`
	QuoteID    string `json:"quote_id"`
	Profile    string `json:"profile"`
	BorrowerID string `json:"borrower_id,omitempty"`
}

// PriceCoverageRequest prices an arbitrary coverage bundle. Both scores are
// required.
type PriceCoverageRequest struct {
	LoanAmount  decimal.Decimal  `json:"loan_amount"`
	CreditScore *float64         `json:"credit_score"`
	RiskScore   *float64         `json:"risk_score"`
	Coverage    CoverageElection `json:"coverage"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// ConditionsResponse is the external representation of loan conditions.
type ConditionsResponse struct {
	CreditScore  float64         `json:"credit_score"`
	CreditTier   string          `json:"credit_tier"`
	NFTRiskScore float64         `json:"nft_risk_score"`
	NFTRiskClass string          `json:"nft_risk_class"`
	BaseLTV      decimal.Decimal `json:"base_ltv"`
	BaseRate     decimal.Decimal `json:"base_rate"`
	AdjustedLTV  decimal.Decimal `json:"adjusted_ltv"`
	AdjustedRate decimal.Decimal `json:"adjusted_rate"`
	FinalLTV     decimal.Decimal `json:"final_ltv"`
	FinalRate    decimal.Decimal `json:"final_rate"`
}

// DiscountResponse is the external representation of a discount summary.
type DiscountResponse struct {
	DiscountTier   string          `json:"discount_tier"`
	LTVAdjustment  decimal.Decimal `json:"ltv_adjustment"`
	RateAdjustment decimal.Decimal `json:"rate_adjustment"`
}

// InsuranceOptionResponse is one priced coverage bundle.
type InsuranceOptionResponse struct {
	Coverage       CoverageElection `json:"coverage"`
	TotalCoverage  decimal.Decimal  `json:"total_coverage"`
	AnnualPremium  decimal.Decimal  `json:"annual_premium"`
	MonthlyPremium decimal.Decimal  `json:"monthly_premium"`
	ImpactOnLTV    decimal.Decimal  `json:"impact_on_ltv"`
	ImpactOnRate   decimal.Decimal  `json:"impact_on_rate"`
}

// ProfileResponse is one repayment profile.
type ProfileResponse struct {
	Kind               string          `json:"kind"`
	DownPayment        decimal.Decimal `json:"down_payment"`
	DownPaymentPercent decimal.Decimal `json:"down_payment_percent"`
	LoanAmount         decimal.Decimal `json:"loan_amount"`
	LTV                decimal.Decimal `json:"ltv"`
	InterestRate       decimal.Decimal `json:"interest_rate"`
	DurationMonths     int             `json:"duration_months"`
	MonthlyPayment     decimal.Decimal `json:"monthly_payment"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	InsuranceRequired  bool            `json:"insurance_required"`
	InsurancePremium   decimal.Decimal `json:"insurance_premium"`
}

// QuoteResponse is the external representation of a quote.
type QuoteResponse struct {
	ID               string                    `json:"id"`
	TenantID         string                    `json:"tenant_id"`
	BorrowerID       string                    `json:"borrower_id"`
	TokenID          string                    `json:"token_id"`
	AssetValue       decimal.Decimal           `json:"asset_value"`
	Currency         string                    `json:"currency"`
	Status           string                    `json:"status"`
	SelectedProfile  string                    `json:"selected_profile,omitempty"`
	Conditions       ConditionsResponse        `json:"conditions"`
	Discount         DiscountResponse          `json:"discount"`
	InsuranceOptions []InsuranceOptionResponse `json:"insurance_options"`
	Profiles         []ProfileResponse         `json:"profiles"`
	ElectedCoverage  CoverageElection          `json:"elected_coverage"`
	ElectedPremium   decimal.Decimal           `json:"elected_premium"`
	Recommended      string                    `json:"recommended"`
	ExpiresAt        time.Time                 `json:"expires_at"`
	CreatedAt        time.Time                 `json:"created_at"`
	UpdatedAt        time.Time                 `json:"updated_at"`
}

// AmortizationEntryResponse represents a single amortization schedule entry.
type AmortizationEntryResponse struct {
	Period           int             `json:"period"`
	DueDate          time.Time       `json:"due_date"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	Total            decimal.Decimal `json:"total"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// AcceptQuoteResponse carries the accepted quote and the repayment schedule
// of the selected profile.
type AcceptQuoteResponse struct {
	Quote    QuoteResponse               `json:"quote"`
	Schedule []AmortizationEntryResponse `json:"schedule"`
}

// ListQuotesResponse lists a borrower's quotes.
type ListQuotesResponse struct {
	Quotes []QuoteResponse `json:"quotes"`
}

// PriceCoverageResponse is the premium for one coverage bundle.
type PriceCoverageResponse struct {
	CreditTier     string           `json:"credit_tier"`
	RiskClass      string           `json:"risk_class"`
	Coverage       CoverageElection `json:"coverage"`
	AnnualPremium  decimal.Decimal  `json:"annual_premium"`
	MonthlyPremium decimal.Decimal  `json:"monthly_premium"`
}
