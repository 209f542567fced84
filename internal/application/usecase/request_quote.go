package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/rwa-lending/internal/application/dto"
	"github.com/bibbank/rwa-lending/internal/domain/model"
	"github.com/bibbank/rwa-lending/internal/domain/port"
	"github.com/bibbank/rwa-lending/internal/domain/service"
	"github.com/bibbank/rwa-lending/pkg/observability"
)

const tracerName = "github.com/bibbank/rwa-lending/internal/application/usecase"

// RequestQuoteUseCase prices a tokenized asset for a borrower and issues a
// time-limited quote.
type RequestQuoteUseCase struct {
	quoteRepo port.QuoteRepository
	publisher port.EventPublisher
	catalog   port.AssetCatalog
	credit    port.CreditProfileProvider
	engine    *service.Engine
	cache     port.QuoteCache
	metrics   *observability.QuoteMetrics
	logger    *slog.Logger
	validity  time.Duration
	tracer    trace.Tracer
}

// NewRequestQuoteUseCase wires dependencies. cache and metrics may be nil.
func NewRequestQuoteUseCase(
	quoteRepo port.QuoteRepository,
	publisher port.EventPublisher,
	catalog port.AssetCatalog,
	credit port.CreditProfileProvider,
	engine *service.Engine,
	cache port.QuoteCache,
	metrics *observability.QuoteMetrics,
	logger *slog.Logger,
	validity time.Duration,
) *RequestQuoteUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RequestQuoteUseCase{
		quoteRepo: quoteRepo,
		publisher: publisher,
		catalog:   catalog,
		credit:    credit,
		engine:    engine,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		validity:  validity,
		tracer:    otel.Tracer(tracerName),
	}
}

// Execute fetches the asset and credit score, prices them (through the
// cache when one is configured), persists the quote and publishes
// QuoteIssued.
func (uc *RequestQuoteUseCase) Execute(
	ctx context.Context,
	req dto.RequestQuoteRequest,
) (resp dto.QuoteResponse, err error) {
	start := time.Now()
	ctx, span := uc.tracer.Start(ctx, "RequestQuote", trace.WithAttributes(
		attribute.String("token_id", req.TokenID),
		attribute.String("borrower_id", req.BorrowerID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		uc.metrics.ObserveLatency(ctx, time.Since(start))
	}()

	for _, f := range []struct{ name, value string }{
		{"tenant_id", req.TenantID},
		{"borrower_id", req.BorrowerID},
		{"token_id", req.TokenID},
	} {
		if err := required(f.name, f.value); err != nil {
			return dto.QuoteResponse{}, fmt.Errorf("validate request: %w", err)
		}
	}

	// 1. Fetch collateral and credit profile.
	asset, err := uc.catalog.GetAsset(ctx, req.TokenID)
	if err != nil {
		return dto.QuoteResponse{}, fmt.Errorf("fetch asset: %w", err)
	}
	creditScore, err := uc.credit.GetCreditScore(ctx, req.BorrowerID)
	if err != nil {
		return dto.QuoteResponse{}, fmt.Errorf("fetch credit score: %w", err)
	}

	assetSnap := model.AssetSnapshot{
		TokenID:   asset.TokenID,
		Value:     asset.Valuation.Amount(),
		RiskScore: asset.RiskScore,
	}
	borrowerSnap := model.BorrowerSnapshot{
		BorrowerID:  req.BorrowerID,
		CreditScore: model.Score(creditScore),
	}
	if req.Coverage != nil {
		c := fromCoverageElection(*req.Coverage)
		borrowerSnap.Coverage = &c
	}

	// 2. Price, preferring a cached result for the same inputs.
	result, err := uc.price(ctx, assetSnap, borrowerSnap)
	if err != nil {
		return dto.QuoteResponse{}, fmt.Errorf("price quote: %w", err)
	}

	// 3. Issue the quote aggregate.
	quote, err := model.NewQuote(
		req.TenantID, req.BorrowerID, req.TokenID,
		assetSnap.Value, asset.Valuation.Currency().Code(),
		result, uc.validity, time.Now().UTC(),
	)
	if err != nil {
		return dto.QuoteResponse{}, fmt.Errorf("create quote: %w", err)
	}

	// 4. Persist.
	if err := uc.quoteRepo.Save(ctx, quote); err != nil {
		return dto.QuoteResponse{}, fmt.Errorf("save quote: %w", err)
	}

	// 5. Publish domain events.
	if err := uc.publisher.Publish(ctx, quote.DomainEvents()...); err != nil {
		return dto.QuoteResponse{}, fmt.Errorf("publish events: %w", err)
	}

	c := result.Conditions
	uc.metrics.QuoteIssued(ctx, c.CreditTier.String(), c.NFTRiskClass.String())
	span.SetAttributes(attribute.String("quote_id", quote.ID()))
	uc.logger.InfoContext(ctx, "quote issued",
		"quote_id", quote.ID(),
		"token_id", req.TokenID,
		"credit_tier", c.CreditTier.String(),
		"risk_class", c.NFTRiskClass.String(),
		"final_ltv", c.FinalLTV.String(),
	)

	return toQuoteResponse(quote.ClearEvents()), nil
}

func (uc *RequestQuoteUseCase) price(
	ctx context.Context,
	asset model.AssetSnapshot,
	borrower model.BorrowerSnapshot,
) (model.QuoteResult, error) {
	if uc.cache == nil {
		return uc.engine.Quote(asset, borrower)
	}

	key := QuoteCacheKey(asset, borrower)
	cached, hit, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.logger.WarnContext(ctx, "quote cache lookup failed", "error", err)
	}
	uc.metrics.CacheLookup(ctx, hit)
	if hit {
		return cached, nil
	}

	result, err := uc.engine.Quote(asset, borrower)
	if err != nil {
		return model.QuoteResult{}, err
	}
	if err := uc.cache.Set(ctx, key, result); err != nil {
		uc.logger.WarnContext(ctx, "quote cache fill failed", "error", err)
	}
	return result, nil
}

// QuoteCacheKey renders the engine input tuple. Token and borrower IDs are
// left out because the engine never reads them.
func QuoteCacheKey(asset model.AssetSnapshot, borrower model.BorrowerSnapshot) string {
	coverage := "default"
	if borrower.Coverage != nil {
		coverage = borrower.Coverage.Normalize().String()
	}
	parts := []string{
		asset.Value.String(),
		formatScore(asset.RiskScore),
		formatScore(borrower.CreditScore),
		coverage,
	}
	return strings.Join(parts, "|")
}

func formatScore(s *float64) string {
	if s == nil {
		return "none"
	}
	return strconv.FormatFloat(*s, 'g', -1, 64)
}
