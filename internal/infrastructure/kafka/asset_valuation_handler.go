package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/bibbank/rwa-lending/internal/domain/port"
	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
	pkgkafka "github.com/bibbank/rwa-lending/pkg/kafka"
	"github.com/bibbank/rwa-lending/pkg/money"
)

// AssetStore receives revalued assets.
type AssetStore interface {
	Put(a port.AssetRecord)
}

// AssetValuation is the payload of an asset revaluation message.
type AssetValuation struct {
	TokenID   string          `json:"token_id"`
	Name      string          `json:"name"`
	Valuation decimal.Decimal `json:"valuation"`
	Currency  string          `json:"currency"`
	RiskScore *float64        `json:"risk_score"`
	RiskClass string          `json:"risk_class,omitempty"`
}

// NewAssetValuationHandler returns a consumer handler that validates
// revaluations and stores them. Invalid messages return an error so the
// consumer logs and skips them.
func NewAssetValuationHandler(store AssetStore, logger *slog.Logger) pkgkafka.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, msg pkgkafka.Message) error {
		var v AssetValuation
		if err := json.Unmarshal(msg.Value, &v); err != nil {
			return fmt.Errorf("decode asset valuation: %w", err)
		}
		record, err := v.toRecord()
		if err != nil {
			return fmt.Errorf("asset %q: %w", v.TokenID, err)
		}
		store.Put(record)
		logger.InfoContext(ctx, "asset revalued",
			"token_id", record.TokenID,
			"valuation", record.Valuation.String(),
			"risk_score", *record.RiskScore,
		)
		return nil
	}
}

func (v AssetValuation) toRecord() (port.AssetRecord, error) {
	if v.TokenID == "" {
		return port.AssetRecord{}, fmt.Errorf("token_id is required")
	}
	if !v.Valuation.IsPositive() {
		return port.AssetRecord{}, fmt.Errorf("valuation must be positive")
	}
	if v.RiskScore == nil {
		return port.AssetRecord{}, fmt.Errorf("risk_score is required")
	}
	currency, err := money.NewCurrency(v.Currency)
	if err != nil {
		return port.AssetRecord{}, err
	}
	record := port.AssetRecord{
		TokenID:   v.TokenID,
		Name:      v.Name,
		Valuation: money.New(v.Valuation, currency),
		RiskScore: v.RiskScore,
	}
	if v.RiskClass != "" {
		class, err := valueobject.NewAssetRiskClass(v.RiskClass)
		if err != nil {
			return port.AssetRecord{}, err
		}
		record.RiskClass = class
	}
	return record, nil
}
