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

// AcceptQuoteUseCase records the borrower's chosen repayment profile and
// returns its amortization schedule.
type AcceptQuoteUseCase struct {
	quoteRepo port.QuoteRepository
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewAcceptQuoteUseCase wires dependencies.
func NewAcceptQuoteUseCase(
	quoteRepo port.QuoteRepository,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *AcceptQuoteUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AcceptQuoteUseCase{quoteRepo: quoteRepo, publisher: publisher, logger: logger}
}

// Execute accepts an issued quote. A quote found past its window is expired
// (and persisted as such) before the acceptance is refused.
func (uc *AcceptQuoteUseCase) Execute(
	ctx context.Context,
	req dto.AcceptQuoteRequest,
) (dto.AcceptQuoteResponse, error) {
	kind, err := valueobject.NewProfileKind(req.Profile)
	if err != nil {
		return dto.AcceptQuoteResponse{}, fmt.Errorf("validate request: %w",
			&model.InvalidInputError{Field: "profile", Reason: err.Error()})
	}

	// 1. Load the quote.
	quote, err := findScoped(ctx, uc.quoteRepo, req.TenantID, req.QuoteID, req.BorrowerID)
	if err != nil {
		return dto.AcceptQuoteResponse{}, err
	}

	now := time.Now().UTC()

	// 2. Accept, or record the expiry that prevents it.
	accepted, err := quote.Accept(kind, now)
	if err != nil {
		if _, expErr := expireIfDue(ctx, uc.quoteRepo, uc.publisher, quote, now); expErr != nil {
			uc.logger.WarnContext(ctx, "failed to record quote expiry",
				"quote_id", quote.ID(), "error", expErr)
		}
		return dto.AcceptQuoteResponse{}, fmt.Errorf("accept quote: %w", err)
	}

	// 3. Persist.
	if err := uc.quoteRepo.Save(ctx, accepted); err != nil {
		return dto.AcceptQuoteResponse{}, fmt.Errorf("save quote: %w", err)
	}

	// 4. Publish domain events.
	if err := uc.publisher.Publish(ctx, accepted.DomainEvents()...); err != nil {
		return dto.AcceptQuoteResponse{}, fmt.Errorf("publish events: %w", err)
	}

	// 5. Build the repayment schedule of the selected profile.
	option, _ := accepted.SelectedOption()
	schedule := model.GenerateAmortizationSchedule(
		option.LoanAmount, option.InterestRate, option.DurationMonths, now,
	)

	uc.logger.InfoContext(ctx, "quote accepted",
		"quote_id", accepted.ID(),
		"profile", kind.String(),
		"loan_amount", option.LoanAmount.String(),
	)

	return dto.AcceptQuoteResponse{
		Quote:    toQuoteResponse(accepted.ClearEvents()),
		Schedule: toScheduleResponse(schedule),
	}, nil
}
