//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/rwa-lending/internal/domain/model"
	"github.com/bibbank/rwa-lending/internal/domain/service"
	"github.com/bibbank/rwa-lending/internal/domain/valueobject"
	"github.com/bibbank/rwa-lending/internal/infrastructure/persistence/postgres"
	"github.com/bibbank/rwa-lending/pkg/testutil"
)

func newQuote(t *testing.T, borrowerID string, now time.Time) model.Quote {
	t.Helper()
	result, err := service.NewEngine().Quote(
		model.AssetSnapshot{TokenID: testutil.TestTokenID, Value: decimal.NewFromInt(100_000), RiskScore: model.Score(20)},
		model.BorrowerSnapshot{BorrowerID: borrowerID, CreditScore: model.Score(750)},
	)
	require.NoError(t, err)
	q, err := model.NewQuote(
		testutil.TestTenantID, borrowerID, testutil.TestTokenID,
		decimal.NewFromInt(100_000), "USD", result, 15*time.Minute, now,
	)
	require.NoError(t, err)
	return q.ClearEvents()
}

func TestQuoteRepo_Integration(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	pc.RunMigrations(t, postgres.Migrations, postgres.MigrationsDir)
	repo := postgres.NewQuoteRepo(pc.Pool)

	t.Run("save and find round trip", func(t *testing.T) {
		pc.Truncate(t, "quotes")
		now := time.Now().UTC()
		q := newQuote(t, testutil.TestBorrowerID1, now)

		require.NoError(t, repo.Save(ctx, q))

		got, err := repo.FindByID(ctx, testutil.TestTenantID, q.ID())
		require.NoError(t, err)
		assert.Equal(t, q.ID(), got.ID())
		assert.Equal(t, testutil.TestBorrowerID1, got.BorrowerID())
		assert.True(t, got.Status().Equal(valueobject.QuoteStatusIssued))
		assert.True(t, got.SelectedProfile().IsZero())
		assert.Equal(t, 1, got.Version())
		assert.WithinDuration(t, q.ExpiresAt(), got.ExpiresAt(), time.Millisecond)
		assert.True(t, q.Result().Conditions.FinalLTV.Equal(got.Result().Conditions.FinalLTV))
		assert.True(t, q.Result().Conditions.CreditTier.Equal(got.Result().Conditions.CreditTier))
		assert.True(t, q.Result().Profiles[1].MonthlyPayment.Equal(got.Result().Profiles[1].MonthlyPayment))

		var profiles int
		require.NoError(t, pc.Pool.QueryRow(ctx,
			`SELECT count(*) FROM quote_profiles WHERE quote_id = $1`, q.ID()).Scan(&profiles))
		assert.Equal(t, 3, profiles)
	})

	t.Run("accepting bumps the version and rejects stale writers", func(t *testing.T) {
		pc.Truncate(t, "quotes")
		now := time.Now().UTC()
		q := newQuote(t, testutil.TestBorrowerID1, now)
		require.NoError(t, repo.Save(ctx, q))

		stored, err := repo.FindByID(ctx, testutil.TestTenantID, q.ID())
		require.NoError(t, err)
		accepted, err := stored.Accept(valueobject.ProfileKindBalanced, now.Add(time.Minute))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, accepted))

		got, err := repo.FindByID(ctx, testutil.TestTenantID, q.ID())
		require.NoError(t, err)
		assert.True(t, got.Status().Equal(valueobject.QuoteStatusAccepted))
		assert.True(t, got.SelectedProfile().Equal(valueobject.ProfileKindBalanced))
		assert.Equal(t, 2, got.Version())

		expired, err := stored.Expire(now.Add(time.Hour))
		require.NoError(t, err)
		err = repo.Save(ctx, expired)
		assert.ErrorIs(t, err, model.ErrVersionConflict)
	})

	t.Run("unknown quote and foreign tenant are not found", func(t *testing.T) {
		pc.Truncate(t, "quotes")
		q := newQuote(t, testutil.TestBorrowerID1, time.Now().UTC())
		require.NoError(t, repo.Save(ctx, q))

		_, err := repo.FindByID(ctx, testutil.TestTenantID, "00000000-0000-0000-0000-00000000ffff")
		assert.ErrorIs(t, err, model.ErrQuoteNotFound)

		_, err = repo.FindByID(ctx, "00000000-0000-0000-0000-000000000099", q.ID())
		assert.ErrorIs(t, err, model.ErrQuoteNotFound)
	})

	t.Run("lists a borrower's quotes newest first", func(t *testing.T) {
		pc.Truncate(t, "quotes")
		base := time.Now().UTC()
		older := newQuote(t, testutil.TestBorrowerID1, base.Add(-time.Hour))
		newer := newQuote(t, testutil.TestBorrowerID1, base)
		other := newQuote(t, testutil.TestBorrowerID2, base)
		for _, q := range []model.Quote{older, newer, other} {
			require.NoError(t, repo.Save(ctx, q))
		}

		quotes, err := repo.FindByBorrowerID(ctx, testutil.TestTenantID, testutil.TestBorrowerID1)
		require.NoError(t, err)
		require.Len(t, quotes, 2)
		assert.Equal(t, newer.ID(), quotes[0].ID())
		assert.Equal(t, older.ID(), quotes[1].ID())

		none, err := repo.FindByBorrowerID(ctx, testutil.TestTenantID, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})
}
