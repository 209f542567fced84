package usecase

import (
	"context"

	"github.com/bibbank/rwa-lending/internal/application/dto"
)

// Executor is the shape shared by every use case.
type Executor[Req, Resp any] interface {
	Execute(ctx context.Context, req Req) (Resp, error)
}

// Set groups the pricing operations the transports expose.
type Set struct {
	RequestQuote  Executor[dto.RequestQuoteRequest, dto.QuoteResponse]
	GetQuote      Executor[dto.GetQuoteRequest, dto.QuoteResponse]
	ListQuotes    Executor[dto.ListQuotesRequest, dto.ListQuotesResponse]
	AcceptQuote   Executor[dto.AcceptQuoteRequest, dto.AcceptQuoteResponse]
	PriceCoverage Executor[dto.PriceCoverageRequest, dto.PriceCoverageResponse]
}

var (
	_ Executor[dto.RequestQuoteRequest, dto.QuoteResponse]          = (*RequestQuoteUseCase)(nil)
	_ Executor[dto.GetQuoteRequest, dto.QuoteResponse]              = (*GetQuoteUseCase)(nil)
	_ Executor[dto.ListQuotesRequest, dto.ListQuotesResponse]       = (*ListQuotesUseCase)(nil)
	_ Executor[dto.AcceptQuoteRequest, dto.AcceptQuoteResponse]     = (*AcceptQuoteUseCase)(nil)
	_ Executor[dto.PriceCoverageRequest, dto.PriceCoverageResponse] = (*PriceCoverageUseCase)(nil)
)
