package port

import (
	"context"

	"github.com/bibbank/rwa-lending/internal/domain/event"
	"github.com/bibbank/rwa-lending/internal/domain/model"
	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
	"github.com/bibbank/rwa-lending/pkg/money"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// QuoteRepository persists and retrieves quotes. FindByID returns
// model.ErrQuoteNotFound when nothing matches.
type QuoteRepository interface {
	Save(ctx context.Context, q model.Quote) error
	FindByID(ctx context.Context, tenantID, id string) (model.Quote, error)
	FindByBorrowerID(ctx context.Context, tenantID, borrowerID string) ([]model.Quote, error)
}

// QuoteCache memoizes engine results keyed on the engine input tuple.
type QuoteCache interface {
	Get(ctx context.Context, key string) (model.QuoteResult, bool, error)
	Set(ctx context.Context, key string, result model.QuoteResult) error
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// ---------------------------------------------------------------------------
// External service ports
// ---------------------------------------------------------------------------

// AssetRecord is the catalog view of a tokenized asset. A nil RiskScore means
// the asset has not been scored and cannot be priced. RiskClass is set when
// the catalog has already classified the asset; pricing always reclassifies
// from RiskScore.
type AssetRecord struct {
	TokenID   string
	Name      string
	Valuation money.Money
	RiskScore *float64
	RiskClass valueobject.AssetRiskClass
}

// AssetCatalog looks up tokenized assets offered as collateral.
type AssetCatalog interface {
	GetAsset(ctx context.Context, tokenID string) (AssetRecord, error)
}

// CreditProfileProvider fetches a borrower's credit score on a 0-1000 scale.
type CreditProfileProvider interface {
	GetCreditScore(ctx context.Context, borrowerID string) (float64, error)
}
