package grpc

// proto.go hand-writes what buf would generate for rwa.pricing.v1.PricingService.
// Messages travel through the JSON codec.

import (
	"context"

	"github.com/shopspring/decimal"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/rwa-lending/internal/application/dto"
)

const serviceName = "rwa.pricing.v1.PricingService"

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

// RequestQuoteRequest asks for a priced quote. A nil Coverage elects the full
// bundle.
type RequestQuoteRequest struct {
	BorrowerID string                `json:"borrower_id"`
	TokenID    string                `json:"token_id"`
	Coverage   *dto.CoverageElection `json:"coverage,omitempty"`
}

// GetQuoteRequest identifies a quote.
type GetQuoteRequest struct {
	QuoteID string `json:"quote_id"`
}

// ListQuotesRequest identifies a borrower.
type ListQuotesRequest struct {
	BorrowerID string `json:"borrower_id"`
}

// AcceptQuoteRequest selects a repayment profile.
type AcceptQuoteRequest struct {
	QuoteID string `json:"quote_id"`
	Profile string `json:"profile"`
}

// PriceCoverageRequest prices a coverage bundle without issuing a quote.
type PriceCoverageRequest struct {
	LoanAmount  decimal.Decimal      `json:"loan_amount"`
	CreditScore *float64             `json:"credit_score"`
	RiskScore   *float64             `json:"risk_score"`
	Coverage    dto.CoverageElection `json:"coverage"`
}

// QuoteMsg wraps a quote.
type QuoteMsg struct {
	Quote dto.QuoteResponse `json:"quote"`
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// PricingServiceServer is the server API for PricingService.
type PricingServiceServer interface {
	RequestQuote(context.Context, *RequestQuoteRequest) (*QuoteMsg, error)
	GetQuote(context.Context, *GetQuoteRequest) (*QuoteMsg, error)
	ListQuotes(context.Context, *ListQuotesRequest) (*dto.ListQuotesResponse, error)
	AcceptQuote(context.Context, *AcceptQuoteRequest) (*dto.AcceptQuoteResponse, error)
	PriceCoverage(context.Context, *PriceCoverageRequest) (*dto.PriceCoverageResponse, error)
	mustEmbedUnimplementedPricingServiceServer()
}

// UnimplementedPricingServiceServer provides forward-compatible defaults.
type UnimplementedPricingServiceServer struct{}

func (UnimplementedPricingServiceServer) RequestQuote(context.Context, *RequestQuoteRequest) (*QuoteMsg, error) {
	return nil, status.Error(codes.Unimplemented, "method RequestQuote not implemented")
}
func (UnimplementedPricingServiceServer) GetQuote(context.Context, *GetQuoteRequest) (*QuoteMsg, error) {
	return nil, status.Error(codes.Unimplemented, "method GetQuote not implemented")
}
func (UnimplementedPricingServiceServer) ListQuotes(context.Context, *ListQuotesRequest) (*dto.ListQuotesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListQuotes not implemented")
}
func (UnimplementedPricingServiceServer) AcceptQuote(context.Context, *AcceptQuoteRequest) (*dto.AcceptQuoteResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AcceptQuote not implemented")
}
func (UnimplementedPricingServiceServer) PriceCoverage(context.Context, *PriceCoverageRequest) (*dto.PriceCoverageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PriceCoverage not implemented")
}
func (UnimplementedPricingServiceServer) mustEmbedUnimplementedPricingServiceServer() {}

// RegisterPricingServiceServer registers srv with s.
func RegisterPricingServiceServer(s grpclib.ServiceRegistrar, srv PricingServiceServer) {
	s.RegisterService(&pricingServiceDesc, srv)
}

var pricingServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*PricingServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		unary("RequestQuote", PricingServiceServer.RequestQuote),
		unary("GetQuote", PricingServiceServer.GetQuote),
		unary("ListQuotes", PricingServiceServer.ListQuotes),
		unary("AcceptQuote", PricingServiceServer.AcceptQuote),
		unary("PriceCoverage", PricingServiceServer.PriceCoverage),
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "rwa/pricing/v1/pricing.proto",
}

// unary builds the method descriptor that decodes Req and dispatches to call,
// through the interceptor chain when one is installed.
func unary[Req, Resp any](
	name string,
	call func(PricingServiceServer, context.Context, *Req) (Resp, error),
) grpclib.MethodDesc {
	fullMethod := "/" + serviceName + "/" + name
	return grpclib.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PricingServiceServer), ctx, in)
			}
			info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(PricingServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
