package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/rwa-lending/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const aggregateQuote = "Quote"

// ---------------------------------------------------------------------------
// Quote Events
// ---------------------------------------------------------------------------

// QuoteIssued is raised when a priced quote is handed to a borrower.
type QuoteIssued struct {
	events.BaseEvent
	BorrowerID string          `json:"borrower_id"`
	TokenID    string          `json:"token_id"`
	AssetValue decimal.Decimal `json:"asset_value"`
	Currency   string          `json:"currency"`
	CreditTier string          `json:"credit_tier"`
	RiskClass  string          `json:"risk_class"`
	FinalLTV   decimal.Decimal `json:"final_ltv"`
	FinalRate  decimal.Decimal `json:"final_rate"`
	ExpiresAt  time.Time       `json:"expires_at"`
}

func NewQuoteIssued(
	quoteID, tenantID, borrowerID, tokenID string,
	assetValue decimal.Decimal, currency string,
	creditTier, riskClass string,
	finalLTV, finalRate decimal.Decimal,
	expiresAt, now time.Time,
) QuoteIssued {
	return QuoteIssued{
		BaseEvent:  events.NewBaseEvent("pricing.quote.issued", quoteID, aggregateQuote, tenantID, now),
		BorrowerID: borrowerID,
		TokenID:    tokenID,
		AssetValue: assetValue,
		Currency:   currency,
		CreditTier: creditTier,
		RiskClass:  riskClass,
		FinalLTV:   finalLTV,
		FinalRate:  finalRate,
		ExpiresAt:  expiresAt,
	}
}

// QuoteAccepted is raised when the borrower selects a repayment profile.
type QuoteAccepted struct {
	events.BaseEvent
	BorrowerID        string          `json:"borrower_id"`
	TokenID           string          `json:"token_id"`
	Profile           string          `json:"profile"`
	LoanAmount        decimal.Decimal `json:"loan_amount"`
	DownPayment       decimal.Decimal `json:"down_payment"`
	InterestRate      decimal.Decimal `json:"interest_rate"`
	DurationMonths    int             `json:"duration_months"`
	InsuranceRequired bool            `json:"insurance_required"`
}

func NewQuoteAccepted(
	quoteID, tenantID, borrowerID, tokenID, profile string,
	loanAmount, downPayment, interestRate decimal.Decimal,
	durationMonths int, insuranceRequired bool,
	now time.Time,
) QuoteAccepted {
	return QuoteAccepted{
		BaseEvent:         events.NewBaseEvent("pricing.quote.accepted", quoteID, aggregateQuote, tenantID, now),
		BorrowerID:        borrowerID,
		TokenID:           tokenID,
		Profile:           profile,
		LoanAmount:        loanAmount,
		DownPayment:       downPayment,
		InterestRate:      interestRate,
		DurationMonths:    durationMonths,
		InsuranceRequired: insuranceRequired,
	}
}

// QuoteExpired is raised when an issued quote passes its validity window.
type QuoteExpired struct {
	events.BaseEvent
	BorrowerID string `json:"borrower_id"`
}

func NewQuoteExpired(quoteID, tenantID, borrowerID string, now time.Time) QuoteExpired {
	return QuoteExpired{
		BaseEvent:  events.NewBaseEvent("pricing.quote.expired", quoteID, aggregateQuote, tenantID, now),
		BorrowerID: borrowerID,
	}
}
