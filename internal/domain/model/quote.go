package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/rwa-lending/internal/domain/event"
	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Quote aggregate root
// ---------------------------------------------------------------------------

// Quote is an immutable aggregate wrapping one priced QuoteResult. Every
// mutation returns a new copy.
type Quote struct {
	id              string
	tenantID        string
	borrowerID      string
	tokenID         string
	assetValue      decimal.Decimal
	currency        string
	result          QuoteResult
	status          valueobject.QuoteStatus
	selectedProfile valueobject.ProfileKind
	expiresAt       time.Time
	version         int
	createdAt       time.Time
	updatedAt       time.Time
	domainEvents    []event.DomainEvent
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewQuote creates a quote in ISSUED status valid for the given window.
func NewQuote(
	tenantID, borrowerID, tokenID string,
	assetValue decimal.Decimal,
	currency string,
	result QuoteResult,
	validity time.Duration,
	now time.Time,
) (Quote, error) {
	if tenantID == "" {
		return Quote{}, errors.New("tenant ID is required")
	}
	if borrowerID == "" {
		return Quote{}, errors.New("borrower ID is required")
	}
	if tokenID == "" {
		return Quote{}, errors.New("token ID is required")
	}
	if !assetValue.IsPositive() {
		return Quote{}, errors.New("asset value must be positive")
	}
	if currency == "" {
		return Quote{}, errors.New("currency is required")
	}
	if validity <= 0 {
		return Quote{}, errors.New("validity window must be positive")
	}

	id := uuid.New().String()
	expiresAt := now.Add(validity)
	q := Quote{
		id:         id,
		tenantID:   tenantID,
		borrowerID: borrowerID,
		tokenID:    tokenID,
		assetValue: assetValue,
		currency:   currency,
		result:     result,
		status:     valueobject.QuoteStatusIssued,
		expiresAt:  expiresAt,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}

	c := result.Conditions
	q.domainEvents = append(q.domainEvents, event.NewQuoteIssued(
		id, tenantID, borrowerID, tokenID, assetValue, currency,
		c.CreditTier.String(), c.NFTRiskClass.String(),
		c.FinalLTV, c.FinalRate, expiresAt, now,
	))
	return q, nil
}

// ReconstructQuote rebuilds an aggregate from persistence without side-effects.
func ReconstructQuote(
	id, tenantID, borrowerID, tokenID string,
	assetValue decimal.Decimal,
	currency string,
	result QuoteResult,
	status valueobject.QuoteStatus,
	selectedProfile valueobject.ProfileKind,
	expiresAt time.Time,
	version int,
	createdAt, updatedAt time.Time,
) Quote {
	return Quote{
		id:              id,
		tenantID:        tenantID,
		borrowerID:      borrowerID,
		tokenID:         tokenID,
		assetValue:      assetValue,
		currency:        currency,
		result:          result,
		status:          status,
		selectedProfile: selectedProfile,
		expiresAt:       expiresAt,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions (each returns a new copy)
// ---------------------------------------------------------------------------

// Accept transitions ISSUED -> ACCEPTED with the chosen profile and emits
// QuoteAccepted. An issued quote past its expiry cannot be accepted.
func (q Quote) Accept(kind valueobject.ProfileKind, now time.Time) (Quote, error) {
	if q.status.Equal(valueobject.QuoteStatusIssued) && q.IsExpiredAt(now) {
		return q, valueobject.ErrQuoteExpired
	}
	if !q.status.Equal(valueobject.QuoteStatusIssued) {
		return q, valueobject.ErrInvalidStatusTransition
	}
	profile, ok := q.result.Profile(kind)
	if !ok {
		return q, invalidInput("profile", "is not offered by this quote")
	}

	next := q
	next.status = valueobject.QuoteStatusAccepted
	next.selectedProfile = kind
	next.updatedAt = now
	next.domainEvents = copyEvents(q.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewQuoteAccepted(
		q.id, q.tenantID, q.borrowerID, q.tokenID, kind.String(),
		profile.LoanAmount, profile.DownPayment, profile.InterestRate,
		profile.DurationMonths, profile.InsuranceRequired, now,
	))
	return next, nil
}

// Expire transitions ISSUED -> EXPIRED and emits QuoteExpired.
func (q Quote) Expire(now time.Time) (Quote, error) {
	if !q.status.Equal(valueobject.QuoteStatusIssued) {
		return q, valueobject.ErrInvalidStatusTransition
	}
	next := q
	next.status = valueobject.QuoteStatusExpired
	next.updatedAt = now
	next.domainEvents = copyEvents(q.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewQuoteExpired(
		q.id, q.tenantID, q.borrowerID, now,
	))
	return next, nil
}

// IsExpiredAt reports whether the validity window has closed at now.
func (q Quote) IsExpiredAt(now time.Time) bool {
	return !now.Before(q.expiresAt)
}

// SelectedOption returns the accepted profile, if any.
func (q Quote) SelectedOption() (LoanProfileOption, bool) {
	if q.selectedProfile.IsZero() {
		return LoanProfileOption{}, false
	}
	return q.result.Profile(q.selectedProfile)
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (q Quote) ID() string                               { return q.id }
func (q Quote) TenantID() string                         { return q.tenantID }
func (q Quote) BorrowerID() string                       { return q.borrowerID }
func (q Quote) TokenID() string                          { return q.tokenID }
func (q Quote) AssetValue() decimal.Decimal              { return q.assetValue }
func (q Quote) Currency() string                         { return q.currency }
func (q Quote) Result() QuoteResult                      { return q.result }
func (q Quote) Status() valueobject.QuoteStatus          { return q.status }
func (q Quote) SelectedProfile() valueobject.ProfileKind { return q.selectedProfile }
func (q Quote) ExpiresAt() time.Time                     { return q.expiresAt }
func (q Quote) Version() int                             { return q.version }
func (q Quote) CreatedAt() time.Time                     { return q.createdAt }
func (q Quote) UpdatedAt() time.Time                     { return q.updatedAt }
func (q Quote) DomainEvents() []event.DomainEvent        { return q.domainEvents }

// ClearEvents returns a copy with an empty event list (call after publishing).
func (q Quote) ClearEvents() Quote {
	next := q
	next.domainEvents = nil
	return next
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func copyEvents(src []event.DomainEvent) []event.DomainEvent {
	if len(src) == 0 {
		return nil
	}
	dst := make([]event.DomainEvent, len(src))
	copy(dst, src)
	return dst
}
