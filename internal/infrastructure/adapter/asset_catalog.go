package adapter

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/bibbank/rwa-lending/internal/domain/model"
	"github.com/bibbank/rwa-lending/internal/domain/port"
	"github.com/bibbank/rwa-lending/pkg/money"
)

// StubAssetCatalog is a development adapter that returns a deterministic
// valuation and risk score derived from the token ID.
type StubAssetCatalog struct {
	currency money.Currency
}

// NewStubAssetCatalog creates a stub catalog valuing assets in currency.
func NewStubAssetCatalog(currency money.Currency) *StubAssetCatalog {
	return &StubAssetCatalog{currency: currency}
}

// GetAsset values the token between 10,000 and 1,000,000 in whole hundreds
// with a risk score in [0, 100].
func (c *StubAssetCatalog) GetAsset(_ context.Context, tokenID string) (port.AssetRecord, error) {
	if tokenID == "" {
		return port.AssetRecord{}, fmt.Errorf("token ID is required")
	}

	h := sha256.Sum256([]byte(tokenID))
	hundreds := 100 + int64(binary.BigEndian.Uint32(h[:4])%9_901) // [100, 10000]
	risk := float64(binary.BigEndian.Uint16(h[4:6]) % 101)

	return port.AssetRecord{
		TokenID:   tokenID,
		Name:      "Tokenized asset " + tokenID,
		Valuation: money.New(decimal.NewFromInt(hundreds*100), c.currency),
		RiskScore: &risk,
	}, nil
}

// StaticAssetCatalog serves seeded assets, kept current by Put (the asset
// valuation consumer calls it). Unknown tokens go to the fallback, if any.
type StaticAssetCatalog struct {
	mu       sync.RWMutex
	assets   map[string]port.AssetRecord
	fallback port.AssetCatalog
}

// NewStaticAssetCatalog seeds the catalog. fallback may be nil.
func NewStaticAssetCatalog(fallback port.AssetCatalog, assets ...port.AssetRecord) *StaticAssetCatalog {
	c := &StaticAssetCatalog{
		assets:   make(map[string]port.AssetRecord, len(assets)),
		fallback: fallback,
	}
	for _, a := range assets {
		c.assets[a.TokenID] = a
	}
	return c
}

// Put adds or replaces an asset.
func (c *StaticAssetCatalog) Put(a port.AssetRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assets[a.TokenID] = a
}

// GetAsset returns model.ErrAssetNotFound for tokens neither stored nor
// known to the fallback.
func (c *StaticAssetCatalog) GetAsset(ctx context.Context, tokenID string) (port.AssetRecord, error) {
	c.mu.RLock()
	a, ok := c.assets[tokenID]
	c.mu.RUnlock()
	if ok {
		return a, nil
	}
	if c.fallback != nil {
		return c.fallback.GetAsset(ctx, tokenID)
	}
	return port.AssetRecord{}, fmt.Errorf("token %q: %w", tokenID, model.ErrAssetNotFound)
}
