package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/rwa-lending/internal/application/dto"
	"github.com/bibbank/rwa-lending/internal/application/usecase"
	"github.com/bibbank/rwa-lending/internal/domain/model"
	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
	"github.com/bibbank/rwa-lending/pkg/auth"
)

// Compile-time assertion that PricingHandler implements PricingServiceServer.
var _ PricingServiceServer = (*PricingHandler)(nil)

// PricingHandler implements PricingServiceServer on top of the use cases.
type PricingHandler struct {
	UnimplementedPricingServiceServer
	uc     usecase.Set
	logger *slog.Logger
}

// NewPricingHandler creates a new PricingHandler.
func NewPricingHandler(uc usecase.Set, logger *slog.Logger) *PricingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PricingHandler{uc: uc, logger: logger}
}

// RequestQuote prices an asset for a borrower and issues a quote.
func (h *PricingHandler) RequestQuote(ctx context.Context, req *RequestQuoteRequest) (*QuoteMsg, error) {
	claims, err := callerClaims(ctx)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if !claims.CanActFor(req.BorrowerID) {
		return nil, status.Error(codes.PermissionDenied, "cannot request quotes for this borrower")
	}

	resp, err := h.uc.RequestQuote.Execute(ctx, dto.RequestQuoteRequest{
		TenantID:   claims.TenantID.String(),
		BorrowerID: req.BorrowerID,
		TokenID:    req.TokenID,
		Coverage:   req.Coverage,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "RequestQuote", err)
	}
	return &QuoteMsg{Quote: resp}, nil
}

// GetQuote returns a quote, expiring it if its window has closed.
func (h *PricingHandler) GetQuote(ctx context.Context, req *GetQuoteRequest) (*QuoteMsg, error) {
	claims, err := callerClaims(ctx)
	if err != nil {
		return nil, err
	}
	if req == nil || req.QuoteID == "" {
		return nil, status.Error(codes.InvalidArgument, "quote_id is required")
	}

	resp, err := h.uc.GetQuote.Execute(ctx, dto.GetQuoteRequest{
		TenantID:   claims.TenantID.String(),
		QuoteID:    req.QuoteID,
		BorrowerID: claims.BorrowerScope(),
	})
	if err != nil {
		return nil, h.toStatus(ctx, "GetQuote", err)
	}
	return &QuoteMsg{Quote: resp}, nil
}

// ListQuotes lists a borrower's quotes, newest first. Borrowers may omit
// borrower_id to list their own.
func (h *PricingHandler) ListQuotes(ctx context.Context, req *ListQuotesRequest) (*dto.ListQuotesResponse, error) {
	claims, err := callerClaims(ctx)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	borrowerID := req.BorrowerID
	if borrowerID == "" {
		borrowerID = claims.BorrowerScope()
	}
	if !claims.CanActFor(borrowerID) {
		return nil, status.Error(codes.PermissionDenied, "cannot list quotes for this borrower")
	}

	resp, err := h.uc.ListQuotes.Execute(ctx, dto.ListQuotesRequest{
		TenantID:   claims.TenantID.String(),
		BorrowerID: borrowerID,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "ListQuotes", err)
	}
	return &resp, nil
}

// AcceptQuote selects a profile and returns its repayment schedule.
func (h *PricingHandler) AcceptQuote(ctx context.Context, req *AcceptQuoteRequest) (*dto.AcceptQuoteResponse, error) {
	claims, err := callerClaims(ctx)
	if err != nil {
		return nil, err
	}
	if req == nil || req.QuoteID == "" {
		return nil, status.Error(codes.InvalidArgument, "quote_id is required")
	}

	resp, err := h.uc.AcceptQuote.Execute(ctx, dto.AcceptQuoteRequest{
		TenantID:   claims.TenantID.String(),
		QuoteID:    req.QuoteID,
		Profile:    req.Profile,
		BorrowerID: claims.BorrowerScope(),
	})
	if err != nil {
		return nil, h.toStatus(ctx, "AcceptQuote", err)
	}
	return &resp, nil
}

// PriceCoverage prices a coverage bundle.
func (h *PricingHandler) PriceCoverage(ctx context.Context, req *PriceCoverageRequest) (*dto.PriceCoverageResponse, error) {
	if _, err := callerClaims(ctx); err != nil {
		return nil, err
	}
	if req == nil || req.CreditScore == nil || req.RiskScore == nil {
		return nil, status.Error(codes.InvalidArgument, "credit_score and risk_score are required")
	}

	resp, err := h.uc.PriceCoverage.Execute(ctx, dto.PriceCoverageRequest{
		LoanAmount:  req.LoanAmount,
		CreditScore: req.CreditScore,
		RiskScore:   req.RiskScore,
		Coverage:    req.Coverage,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "PriceCoverage", err)
	}
	return &resp, nil
}

// callerClaims returns the authenticated caller, who must hold a pricing role.
func callerClaims(ctx context.Context) (*auth.Claims, error) {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "authentication required")
	}
	if !claims.IsStaff() && !claims.HasRole(auth.RoleBorrower) {
		return nil, status.Error(codes.PermissionDenied, "insufficient permissions")
	}
	return claims, nil
}

// toStatus maps domain errors to gRPC codes. Unrecognised errors are logged
// and reported as Internal without detail.
func (h *PricingHandler) toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, model.ErrQuoteNotFound),
		errors.Is(err, model.ErrAssetNotFound),
		errors.Is(err, model.ErrBorrowerNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, valueobject.ErrQuoteExpired),
		errors.Is(err, valueobject.ErrInvalidStatusTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, model.ErrVersionConflict):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	}
	h.logger.ErrorContext(ctx, "pricing request failed", "method", method, "error", err)
	return status.Error(codes.Internal, "internal error")
}
