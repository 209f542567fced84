package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/bibbank/rwa-lending/internal/application/dto"
	"github.com/bibbank/rwa-lending/internal/application/usecase"
	"github.com/bibbank/rwa-lending/internal/domain/model"
	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
	"github.com/bibbank/rwa-lending/pkg/auth"
)

// QuoteHandler serves the pricing API over HTTP.
type QuoteHandler struct {
	uc     usecase.Set
	logger *slog.Logger
}

// NewQuoteHandler creates a QuoteHandler.
func NewQuoteHandler(uc usecase.Set, logger *slog.Logger) *QuoteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuoteHandler{uc: uc, logger: logger}
}

type requestQuoteBody struct {
	BorrowerID string                `json:"borrower_id"`
	TokenID    string                `json:"token_id"`
	Coverage   *dto.CoverageElection `json:"coverage,omitempty"`
}

type acceptQuoteBody struct {
	Profile string `json:"profile"`
}

type priceCoverageBody struct {
	LoanAmount  decimal.Decimal      `json:"loan_amount"`
	CreditScore *float64             `json:"credit_score"`
	RiskScore   *float64             `json:"risk_score"`
	Coverage    dto.CoverageElection `json:"coverage"`
}

// RequestQuote handles POST /v1/quotes.
func (h *QuoteHandler) RequestQuote(c echo.Context) error {
	claims, err := callerClaims(c)
	if err != nil {
		return err
	}
	var body requestQuoteBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if !claims.CanActFor(body.BorrowerID) {
		return echo.NewHTTPError(http.StatusForbidden, "cannot request quotes for this borrower")
	}

	resp, err := h.uc.RequestQuote.Execute(c.Request().Context(), dto.RequestQuoteRequest{
		TenantID:   claims.TenantID.String(),
		BorrowerID: body.BorrowerID,
		TokenID:    body.TokenID,
		Coverage:   body.Coverage,
	})
	if err != nil {
		return h.toHTTPError(c.Request().Context(), err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// GetQuote handles GET /v1/quotes/:id.
func (h *QuoteHandler) GetQuote(c echo.Context) error {
	claims, err := callerClaims(c)
	if err != nil {
		return err
	}
	resp, err := h.uc.GetQuote.Execute(c.Request().Context(), dto.GetQuoteRequest{
		TenantID:   claims.TenantID.String(),
		QuoteID:    c.Param("id"),
		BorrowerID: claims.BorrowerScope(),
	})
	if err != nil {
		return h.toHTTPError(c.Request().Context(), err)
	}
	return c.JSON(http.StatusOK, resp)
}

// ListQuotes handles GET /v1/quotes?borrower_id=. Borrowers may omit the
// parameter to list their own quotes.
func (h *QuoteHandler) ListQuotes(c echo.Context) error {
	claims, err := callerClaims(c)
	if err != nil {
		return err
	}
	borrowerID := c.QueryParam("borrower_id")
	if borrowerID == "" {
		borrowerID = claims.BorrowerScope()
	}
	if !claims.CanActFor(borrowerID) {
		return echo.NewHTTPError(http.StatusForbidden, "cannot list quotes for this borrower")
	}

	resp, err := h.uc.ListQuotes.Execute(c.Request().Context(), dto.ListQuotesRequest{
		TenantID:   claims.TenantID.String(),
		BorrowerID: borrowerID,
	})
	if err != nil {
		return h.toHTTPError(c.Request().Context(), err)
	}
	return c.JSON(http.StatusOK, resp)
}

// AcceptQuote handles POST /v1/quotes/:id/accept.
func (h *QuoteHandler) AcceptQuote(c echo.Context) error {
	claims, err := callerClaims(c)
	if err != nil {
		return err
	}
	var body acceptQuoteBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	resp, err := h.uc.AcceptQuote.Execute(c.Request().Context(), dto.AcceptQuoteRequest{
		TenantID:   claims.TenantID.String(),
		QuoteID:    c.Param("id"),
		Profile:    body.Profile,
		BorrowerID: claims.BorrowerScope(),
	})
	if err != nil {
		return h.toHTTPError(c.Request().Context(), err)
	}
	return c.JSON(http.StatusOK, resp)
}

// PriceCoverage handles POST /v1/coverage/price.
func (h *QuoteHandler) PriceCoverage(c echo.Context) error {
	if _, err := callerClaims(c); err != nil {
		return err
	}
	var body priceCoverageBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if body.CreditScore == nil || body.RiskScore == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "credit_score and risk_score are required")
	}

	resp, err := h.uc.PriceCoverage.Execute(c.Request().Context(), dto.PriceCoverageRequest(body))
	if err != nil {
		return h.toHTTPError(c.Request().Context(), err)
	}
	return c.JSON(http.StatusOK, resp)
}

func callerClaims(c echo.Context) (*auth.Claims, error) {
	claims, ok := auth.ClaimsFromContext(c.Request().Context())
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if !claims.IsStaff() && !claims.HasRole(auth.RoleBorrower) {
		return nil, echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
	}
	return claims, nil
}

// toHTTPError maps domain errors to status codes. Unrecognised errors are
// logged and reported as 500 without detail.
func (h *QuoteHandler) toHTTPError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrQuoteNotFound),
		errors.Is(err, model.ErrAssetNotFound),
		errors.Is(err, model.ErrBorrowerNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, valueobject.ErrQuoteExpired):
		return echo.NewHTTPError(http.StatusGone, err.Error())
	case errors.Is(err, valueobject.ErrInvalidStatusTransition),
		errors.Is(err, model.ErrVersionConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	h.logger.ErrorContext(ctx, "pricing request failed", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}
