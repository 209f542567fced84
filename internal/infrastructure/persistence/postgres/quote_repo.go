package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bibbank/rwa-lending/internal/domain/model"
	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
	pkgpostgres "github.com/bibbank/rwa-lending/pkg/postgres"
)

// QuoteRepo implements port.QuoteRepository.
type QuoteRepo struct {
	pool *pgxpool.Pool
}

// NewQuoteRepo creates a new PostgreSQL-backed quote repository.
func NewQuoteRepo(pool *pgxpool.Pool) *QuoteRepo {
	return &QuoteRepo{pool: pool}
}

const quoteColumns = `
	id, tenant_id, borrower_id, token_id, asset_value, currency,
	status, selected_profile, result, expires_at,
	version, created_at, updated_at`

// Save upserts a quote under an optimistic lock on version. The profile rows
// are written with the first insert only; they never change afterwards.
func (r *QuoteRepo) Save(ctx context.Context, q model.Quote) error {
	result, err := json.Marshal(q.Result())
	if err != nil {
		return fmt.Errorf("marshal quote result: %w", err)
	}

	var selected *string
	if !q.SelectedProfile().IsZero() {
		s := q.SelectedProfile().String()
		selected = &s
	}

	c := q.Result().Conditions
	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO quotes (
				id, tenant_id, borrower_id, token_id, asset_value, currency,
				credit_tier, risk_class, final_ltv, final_rate,
				status, selected_profile, result, expires_at,
				version, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
			ON CONFLICT (id) DO UPDATE SET
				status           = EXCLUDED.status,
				selected_profile = EXCLUDED.selected_profile,
				version          = quotes.version + 1,
				updated_at       = EXCLUDED.updated_at
			WHERE quotes.version = $15`,
			q.ID(), q.TenantID(), q.BorrowerID(), q.TokenID(), q.AssetValue(), q.Currency(),
			c.CreditTier.String(), c.NFTRiskClass.String(), c.FinalLTV, c.FinalRate,
			q.Status().String(), selected, result, q.ExpiresAt(),
			q.Version(), q.CreatedAt(), q.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("save quote: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("quote %s: %w", q.ID(), model.ErrVersionConflict)
		}

		if q.Version() != 1 {
			return nil
		}
		for _, p := range q.Result().Profiles {
			_, err := tx.Exec(ctx, `
				INSERT INTO quote_profiles (
					quote_id, kind, down_payment, loan_amount, ltv, interest_rate,
					duration_months, monthly_payment, total_cost, insurance_required
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
				ON CONFLICT (quote_id, kind) DO NOTHING`,
				q.ID(), p.Kind.String(), p.DownPayment, p.LoanAmount, p.LTV, p.InterestRate,
				p.DurationMonths, p.MonthlyPayment, p.TotalCost, p.InsuranceRequired,
			)
			if err != nil {
				return fmt.Errorf("save quote profile %s: %w", p.Kind, err)
			}
		}
		return nil
	})
}

// FindByID retrieves a quote by ID within a tenant.
func (r *QuoteRepo) FindByID(ctx context.Context, tenantID, id string) (model.Quote, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+quoteColumns+`
		FROM quotes
		WHERE tenant_id = $1 AND id = $2`, tenantID, id)

	q, err := scanQuoteRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Quote{}, fmt.Errorf("quote %s: %w", id, model.ErrQuoteNotFound)
	}
	return q, err
}

// FindByBorrowerID lists a borrower's quotes, newest first.
func (r *QuoteRepo) FindByBorrowerID(ctx context.Context, tenantID, borrowerID string) ([]model.Quote, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+quoteColumns+`
		FROM quotes
		WHERE tenant_id = $1 AND borrower_id = $2
		ORDER BY created_at DESC`, tenantID, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	quotes := []model.Quote{}
	for rows.Next() {
		q, err := scanQuoteRow(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// ---------------------------------------------------------------------------
// internal helpers
// ---------------------------------------------------------------------------

type scannable interface {
	Scan(dest ...any) error
}

func scanQuoteRow(s scannable) (model.Quote, error) {
	var (
		id, tenantID, borrowerID, tokenID string
		assetValue                        decimal.Decimal
		currency, statusStr               string
		selectedStr                       *string
		resultJSON                        []byte
		expiresAt                         time.Time
		version                           int
		createdAt, updatedAt              time.Time
	)

	err := s.Scan(
		&id, &tenantID, &borrowerID, &tokenID, &assetValue, &currency,
		&statusStr, &selectedStr, &resultJSON, &expiresAt,
		&version, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Quote{}, err
		}
		return model.Quote{}, fmt.Errorf("scan quote: %w", err)
	}

	status, err := valueobject.NewQuoteStatus(statusStr)
	if err != nil {
		return model.Quote{}, fmt.Errorf("parse quote status: %w", err)
	}

	var selected valueobject.ProfileKind
	if selectedStr != nil {
		if selected, err = valueobject.NewProfileKind(*selectedStr); err != nil {
			return model.Quote{}, fmt.Errorf("parse selected profile: %w", err)
		}
	}

	var result model.QuoteResult
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return model.Quote{}, fmt.Errorf("decode quote result: %w", err)
	}

	return model.ReconstructQuote(
		id, tenantID, borrowerID, tokenID,
		assetValue, currency, result,
		status, selected, expiresAt.UTC(),
		version, createdAt.UTC(), updatedAt.UTC(),
	), nil
}
