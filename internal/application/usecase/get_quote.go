package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bibbank/rwa-lending/internal/application/dto"
	"github.com/bibbank/rwa-lending/internal/domain/model"
	"github.com/bibbank/rwa-lending/internal/domain/port"
	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
)

// GetQuoteUseCase retrieves a quote by ID, expiring it on read once its
// validity window has closed.
type GetQuoteUseCase struct {
	quoteRepo port.QuoteRepository
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewGetQuoteUseCase wires dependencies.
func NewGetQuoteUseCase(
	quoteRepo port.QuoteRepository,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *GetQuoteUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetQuoteUseCase{quoteRepo: quoteRepo, publisher: publisher, logger: logger}
}

// Execute returns a quote response for the given ID.
func (uc *GetQuoteUseCase) Execute(
	ctx context.Context,
	req dto.GetQuoteRequest,
) (dto.QuoteResponse, error) {
	quote, err := findScoped(ctx, uc.quoteRepo, req.TenantID, req.QuoteID, req.BorrowerID)
	if err != nil {
		return dto.QuoteResponse{}, err
	}

	quote, err = expireIfDue(ctx, uc.quoteRepo, uc.publisher, quote, time.Now().UTC())
	if err != nil {
		return dto.QuoteResponse{}, err
	}
	if quote.Status().Equal(valueobject.QuoteStatusExpired) {
		uc.logger.DebugContext(ctx, "quote expired on read", "quote_id", quote.ID())
	}
	return toQuoteResponse(quote), nil
}

// ListQuotesUseCase lists a borrower's quotes, newest first.
type ListQuotesUseCase struct {
	quoteRepo port.QuoteRepository
}

// NewListQuotesUseCase wires dependencies.
func NewListQuotesUseCase(quoteRepo port.QuoteRepository) *ListQuotesUseCase {
	return &ListQuotesUseCase{quoteRepo: quoteRepo}
}

// Execute lists quotes without expiring them; statuses are as stored.
func (uc *ListQuotesUseCase) Execute(
	ctx context.Context,
	req dto.ListQuotesRequest,
) (dto.ListQuotesResponse, error) {
	if err := required("borrower_id", req.BorrowerID); err != nil {
		return dto.ListQuotesResponse{}, fmt.Errorf("validate request: %w", err)
	}
	quotes, err := uc.quoteRepo.FindByBorrowerID(ctx, req.TenantID, req.BorrowerID)
	if err != nil {
		return dto.ListQuotesResponse{}, fmt.Errorf("find quotes: %w", err)
	}
	resp := dto.ListQuotesResponse{Quotes: make([]dto.QuoteResponse, 0, len(quotes))}
	for _, q := range quotes {
		resp.Quotes = append(resp.Quotes, toQuoteResponse(q))
	}
	return resp, nil
}

// findScoped loads a quote, hiding it when it belongs to a borrower other than
// borrowerID (if given).
func findScoped(
	ctx context.Context,
	repo port.QuoteRepository,
	tenantID, quoteID, borrowerID string,
) (model.Quote, error) {
	quote, err := repo.FindByID(ctx, tenantID, quoteID)
	if err != nil {
		return model.Quote{}, fmt.Errorf("find quote: %w", err)
	}
	if borrowerID != "" && quote.BorrowerID() != borrowerID {
		return model.Quote{}, fmt.Errorf("find quote %s: %w", quoteID, model.ErrQuoteNotFound)
	}
	return quote, nil
}

// expireIfDue moves an issued quote past its window to EXPIRED, persisting
// and publishing the transition. Other quotes are returned unchanged.
func expireIfDue(
	ctx context.Context,
	repo port.QuoteRepository,
	publisher port.EventPublisher,
	quote model.Quote,
	now time.Time,
) (model.Quote, error) {
	if !quote.Status().Equal(valueobject.QuoteStatusIssued) || !quote.IsExpiredAt(now) {
		return quote, nil
	}
	expired, err := quote.Expire(now)
	if err != nil {
		return model.Quote{}, fmt.Errorf("expire quote: %w", err)
	}
	if err := repo.Save(ctx, expired); err != nil {
		return model.Quote{}, fmt.Errorf("save quote: %w", err)
	}
	if err := publisher.Publish(ctx, expired.DomainEvents()...); err != nil {
		return model.Quote{}, fmt.Errorf("publish events: %w", err)
	}
	return expired.ClearEvents(), nil
}
