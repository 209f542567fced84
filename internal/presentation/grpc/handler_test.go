package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/rwa-lending/internal/application/dto"
	"github.com/bibbank/rwa-lending/internal/application/usecase"
	"github.com/bibbank/rwa-lending/internal/domain/model"
	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
	"github.com/bibbank/rwa-lending/pkg/auth"
)

// --- Stub use cases ---

type stubUseCase[Req, Resp any] struct {
	calls []Req
	fn    func(Req) (Resp, error)
}

func (s *stubUseCase[Req, Resp]) Execute(_ context.Context, req Req) (Resp, error) {
	s.calls = append(s.calls, req)
	if s.fn != nil {
		return s.fn(req)
	}
	var zero Resp
	return zero, nil
}

type stubs struct {
	request *stubUseCase[dto.RequestQuoteRequest, dto.QuoteResponse]
	get     *stubUseCase[dto.GetQuoteRequest, dto.QuoteResponse]
	list    *stubUseCase[dto.ListQuotesRequest, dto.ListQuotesResponse]
	accept  *stubUseCase[dto.AcceptQuoteRequest, dto.AcceptQuoteResponse]
	price   *stubUseCase[dto.PriceCoverageRequest, dto.PriceCoverageResponse]
}

func newStubs() *stubs {
	return &stubs{
		request: &stubUseCase[dto.RequestQuoteRequest, dto.QuoteResponse]{},
		get:     &stubUseCase[dto.GetQuoteRequest, dto.QuoteResponse]{},
		list:    &stubUseCase[dto.ListQuotesRequest, dto.ListQuotesResponse]{},
		accept:  &stubUseCase[dto.AcceptQuoteRequest, dto.AcceptQuoteResponse]{},
		price:   &stubUseCase[dto.PriceCoverageRequest, dto.PriceCoverageResponse]{},
	}
}

func (s *stubs) handler() *PricingHandler {
	return NewPricingHandler(usecase.Set{
		RequestQuote:  s.request,
		GetQuote:      s.get,
		ListQuotes:    s.list,
		AcceptQuote:   s.accept,
		PriceCoverage: s.price,
	}, nil)
}

// --- Helpers ---

var testTenant = uuid.MustParse("00000000-0000-0000-0000-000000000010")

func contextAs(subject string, roles ...string) context.Context {
	return auth.ContextWithClaims(context.Background(), &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		TenantID:         testTenant,
		Roles:            roles,
	})
}

// requireGRPCCode asserts that an error is a gRPC status error with the given code.
func requireGRPCCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok, "expected gRPC status error, got %T: %v", err, err)
	assert.Equal(t, code, st.Code(), "expected gRPC code %s, got %s: %s", code, st.Code(), st.Message())
}

// --- Tests ---

func TestRequestQuote(t *testing.T) {
	t.Run("unauthenticated without claims", func(t *testing.T) {
		_, err := newStubs().handler().RequestQuote(context.Background(), &RequestQuoteRequest{})
		requireGRPCCode(t, err, codes.Unauthenticated)
	})

	t.Run("caller without a pricing role is denied", func(t *testing.T) {
		_, err := newStubs().handler().RequestQuote(contextAs("u-1", "auditor"), &RequestQuoteRequest{BorrowerID: "u-1"})
		requireGRPCCode(t, err, codes.PermissionDenied)
	})

	t.Run("borrower cannot quote for someone else", func(t *testing.T) {
		s := newStubs()
		_, err := s.handler().RequestQuote(contextAs("b-1", auth.RoleBorrower), &RequestQuoteRequest{BorrowerID: "b-2", TokenID: "t"})
		requireGRPCCode(t, err, codes.PermissionDenied)
		assert.Empty(t, s.request.calls)
	})

	t.Run("nil request returns InvalidArgument", func(t *testing.T) {
		_, err := newStubs().handler().RequestQuote(contextAs("b-1", auth.RoleBorrower), nil)
		requireGRPCCode(t, err, codes.InvalidArgument)
	})

	t.Run("happy path passes the tenant from the token", func(t *testing.T) {
		s := newStubs()
		s.request.fn = func(req dto.RequestQuoteRequest) (dto.QuoteResponse, error) {
			return dto.QuoteResponse{ID: "q-1", BorrowerID: req.BorrowerID, Status: "ISSUED"}, nil
		}
		coverage := &dto.CoverageElection{BorrowerDefault: 50}

		resp, err := s.handler().RequestQuote(contextAs("b-1", auth.RoleBorrower), &RequestQuoteRequest{
			BorrowerID: "b-1", TokenID: "tok-1", Coverage: coverage,
		})

		require.NoError(t, err)
		assert.Equal(t, "q-1", resp.Quote.ID)
		require.Len(t, s.request.calls, 1)
		assert.Equal(t, testTenant.String(), s.request.calls[0].TenantID)
		assert.Equal(t, "tok-1", s.request.calls[0].TokenID)
		assert.Equal(t, coverage, s.request.calls[0].Coverage)
	})

	t.Run("unknown asset returns NotFound", func(t *testing.T) {
		s := newStubs()
		s.request.fn = func(dto.RequestQuoteRequest) (dto.QuoteResponse, error) {
			return dto.QuoteResponse{}, fmt.Errorf("fetch asset: %w", model.ErrAssetNotFound)
		}
		_, err := s.handler().RequestQuote(contextAs("uw", auth.RoleUnderwriter), &RequestQuoteRequest{BorrowerID: "b-1", TokenID: "x"})
		requireGRPCCode(t, err, codes.NotFound)
	})

	t.Run("infrastructure failure returns Internal without detail", func(t *testing.T) {
		s := newStubs()
		s.request.fn = func(dto.RequestQuoteRequest) (dto.QuoteResponse, error) {
			return dto.QuoteResponse{}, errors.New("pq: connection refused")
		}
		_, err := s.handler().RequestQuote(contextAs("uw", auth.RoleUnderwriter), &RequestQuoteRequest{BorrowerID: "b-1", TokenID: "x"})
		requireGRPCCode(t, err, codes.Internal)
		assert.NotContains(t, err.Error(), "connection refused")
	})
}

func TestGetQuote(t *testing.T) {
	t.Run("missing quote_id returns InvalidArgument", func(t *testing.T) {
		_, err := newStubs().handler().GetQuote(contextAs("b-1", auth.RoleBorrower), &GetQuoteRequest{})
		requireGRPCCode(t, err, codes.InvalidArgument)
	})

	t.Run("borrowers are scoped to their own quotes", func(t *testing.T) {
		s := newStubs()
		_, err := s.handler().GetQuote(contextAs("b-1", auth.RoleBorrower), &GetQuoteRequest{QuoteID: "q-1"})
		require.NoError(t, err)
		require.Len(t, s.get.calls, 1)
		assert.Equal(t, "b-1", s.get.calls[0].BorrowerID)
	})

	t.Run("staff see every quote", func(t *testing.T) {
		s := newStubs()
		_, err := s.handler().GetQuote(contextAs("admin-1", auth.RoleAdmin), &GetQuoteRequest{QuoteID: "q-1"})
		require.NoError(t, err)
		assert.Empty(t, s.get.calls[0].BorrowerID)
	})

	t.Run("not found maps to NotFound", func(t *testing.T) {
		s := newStubs()
		s.get.fn = func(dto.GetQuoteRequest) (dto.QuoteResponse, error) {
			return dto.QuoteResponse{}, fmt.Errorf("find quote: %w", model.ErrQuoteNotFound)
		}
		_, err := s.handler().GetQuote(contextAs("b-1", auth.RoleBorrower), &GetQuoteRequest{QuoteID: "q-1"})
		requireGRPCCode(t, err, codes.NotFound)
	})
}

func TestListQuotes(t *testing.T) {
	s := newStubs()
	s.list.fn = func(dto.ListQuotesRequest) (dto.ListQuotesResponse, error) {
		return dto.ListQuotesResponse{Quotes: []dto.QuoteResponse{{ID: "q-1"}, {ID: "q-2"}}}, nil
	}

	resp, err := s.handler().ListQuotes(contextAs("b-1", auth.RoleBorrower), &ListQuotesRequest{BorrowerID: "b-1"})
	require.NoError(t, err)
	assert.Len(t, resp.Quotes, 2)

	_, err = s.handler().ListQuotes(contextAs("b-1", auth.RoleBorrower), &ListQuotesRequest{BorrowerID: "b-2"})
	requireGRPCCode(t, err, codes.PermissionDenied)

	_, err = s.handler().ListQuotes(contextAs("b-1", auth.RoleBorrower), &ListQuotesRequest{})
	require.NoError(t, err)
	assert.Equal(t, "b-1", s.list.calls[len(s.list.calls)-1].BorrowerID, "borrowers default to their own quotes")
}

func TestAcceptQuote(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"expired quote", fmt.Errorf("accept quote: %w", valueobject.ErrQuoteExpired), codes.FailedPrecondition},
		{"already accepted", fmt.Errorf("accept quote: %w", valueobject.ErrInvalidStatusTransition), codes.FailedPrecondition},
		{"concurrent update", fmt.Errorf("save quote: %w", model.ErrVersionConflict), codes.Aborted},
		{"unknown profile", &model.InvalidInputError{Field: "profile", Reason: "is unknown"}, codes.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStubs()
			s.accept.fn = func(dto.AcceptQuoteRequest) (dto.AcceptQuoteResponse, error) {
				return dto.AcceptQuoteResponse{}, tt.err
			}
			_, err := s.handler().AcceptQuote(contextAs("b-1", auth.RoleBorrower), &AcceptQuoteRequest{QuoteID: "q-1", Profile: "SAFE"})
			requireGRPCCode(t, err, tt.code)
		})
	}

	t.Run("happy path forwards profile and scope", func(t *testing.T) {
		s := newStubs()
		s.accept.fn = func(req dto.AcceptQuoteRequest) (dto.AcceptQuoteResponse, error) {
			return dto.AcceptQuoteResponse{Quote: dto.QuoteResponse{ID: req.QuoteID, Status: "ACCEPTED"}}, nil
		}
		resp, err := s.handler().AcceptQuote(contextAs("b-1", auth.RoleBorrower), &AcceptQuoteRequest{QuoteID: "q-1", Profile: "BALANCED"})
		require.NoError(t, err)
		assert.Equal(t, "ACCEPTED", resp.Quote.Status)
		assert.Equal(t, "BALANCED", s.accept.calls[0].Profile)
		assert.Equal(t, "b-1", s.accept.calls[0].BorrowerID)
	})
}

func TestPriceCoverage(t *testing.T) {
	s := newStubs()
	s.price.fn = func(req dto.PriceCoverageRequest) (dto.PriceCoverageResponse, error) {
		return dto.PriceCoverageResponse{CreditTier: "A", AnnualPremium: req.LoanAmount.Mul(decimal.RequireFromString("0.006"))}, nil
	}

	resp, err := s.handler().PriceCoverage(contextAs("svc", auth.RoleAPIClient), &PriceCoverageRequest{
		LoanAmount: decimal.NewFromInt(50_000), CreditScore: model.Score(750), RiskScore: model.Score(20),
	})
	require.NoError(t, err)
	assert.True(t, resp.AnnualPremium.Equal(decimal.NewFromInt(300)))

	_, err = s.handler().PriceCoverage(contextAs("svc", auth.RoleAPIClient), &PriceCoverageRequest{
		LoanAmount: decimal.NewFromInt(50_000), CreditScore: model.Score(750),
	})
	requireGRPCCode(t, err, codes.InvalidArgument)
	assert.Len(t, s.price.calls, 1, "a request without a risk score never reaches pricing")

	_, err = s.handler().PriceCoverage(context.Background(), &PriceCoverageRequest{})
	requireGRPCCode(t, err, codes.Unauthenticated)
}
