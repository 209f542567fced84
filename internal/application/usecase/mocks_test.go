package usecase_test

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/bibbank/rwa-lending/internal/domain/event"
	"github.com/bibbank/rwa-lending/internal/domain/model"
	"github.com/bibbank/rwa-lending/internal/domain/port"
	"github.com/bibbank/rwa-lending/pkg/money"
)

// --- Mock implementations ---

type mockQuoteRepository struct {
	mu                   sync.Mutex
	saveFunc             func(ctx context.Context, q model.Quote) error
	findByIDFunc         func(ctx context.Context, tenantID, id string) (model.Quote, error)
	findByBorrowerIDFunc func(ctx context.Context, tenantID, borrowerID string) ([]model.Quote, error)
	savedQuotes          []model.Quote
}

func (m *mockQuoteRepository) Save(ctx context.Context, q model.Quote) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, q)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.savedQuotes = append(m.savedQuotes, q)
	return nil
}

func (m *mockQuoteRepository) FindByID(ctx context.Context, tenantID, id string) (model.Quote, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, tenantID, id)
	}
	return model.Quote{}, model.ErrQuoteNotFound
}

func (m *mockQuoteRepository) FindByBorrowerID(ctx context.Context, tenantID, borrowerID string) ([]model.Quote, error) {
	if m.findByBorrowerIDFunc != nil {
		return m.findByBorrowerIDFunc(ctx, tenantID, borrowerID)
	}
	return nil, nil
}

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, events ...event.DomainEvent) error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

type mockAssetCatalog struct {
	getAssetFunc func(ctx context.Context, tokenID string) (port.AssetRecord, error)
}

func (m *mockAssetCatalog) GetAsset(ctx context.Context, tokenID string) (port.AssetRecord, error) {
	if m.getAssetFunc != nil {
		return m.getAssetFunc(ctx, tokenID)
	}
	return port.AssetRecord{
		TokenID:   tokenID,
		Name:      "Harbour View Apartment 4B",
		Valuation: money.New(decimal.NewFromInt(100_000), money.USD),
		RiskScore: model.Score(20),
	}, nil
}

type mockCreditProfileProvider struct {
	getCreditScoreFunc func(ctx context.Context, borrowerID string) (float64, error)
}

func (m *mockCreditProfileProvider) GetCreditScore(ctx context.Context, borrowerID string) (float64, error) {
	if m.getCreditScoreFunc != nil {
		return m.getCreditScoreFunc(ctx, borrowerID)
	}
	return 750, nil
}

type mockQuoteCache struct {
	getFunc func(ctx context.Context, key string) (model.QuoteResult, bool, error)
	setFunc func(ctx context.Context, key string, result model.QuoteResult) error
	entries map[string]model.QuoteResult
}

func newMockQuoteCache() *mockQuoteCache {
	return &mockQuoteCache{entries: make(map[string]model.QuoteResult)}
}

func (m *mockQuoteCache) Get(ctx context.Context, key string) (model.QuoteResult, bool, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, key)
	}
	r, ok := m.entries[key]
	return r, ok, nil
}

func (m *mockQuoteCache) Set(ctx context.Context, key string, result model.QuoteResult) error {
	if m.setFunc != nil {
		return m.setFunc(ctx, key, result)
	}
	m.entries[key] = result
	return nil
}
