package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/rwa-lending/internal/domain/model"
	"github.com/bibbank/rwa-lending/internal/domain/port"
	"github.com/bibbank/rwa-lending/pkg/money"
)

type fakeBureau struct {
	calls   int
	results []error
	score   float64
}

func (f *fakeBureau) FetchCreditReport(_ context.Context, bureau Bureau, borrowerID string) (CreditReport, error) {
	f.calls++
	if f.calls <= len(f.results) && f.results[f.calls-1] != nil {
		return CreditReport{}, f.results[f.calls-1]
	}
	return CreditReport{Bureau: bureau, BorrowerID: borrowerID, Score: f.score}, nil
}

func fastConfig(retries int) CreditBureauConfig {
	return CreditBureauConfig{PrimaryBureau: BureauEquifax, MaxRetries: retries, RetryBackoff: time.Millisecond}
}

func TestCreditBureauAdapter_GetCreditScore(t *testing.T) {
	t.Run("simulated scores are deterministic and in range", func(t *testing.T) {
		a := NewCreditBureauAdapter(DefaultCreditBureauConfig(), nil)

		first, err := a.GetCreditScore(context.Background(), "borrower-42")
		require.NoError(t, err)
		second, err := a.GetCreditScore(context.Background(), "borrower-42")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.GreaterOrEqual(t, first, 0.0)
		assert.LessOrEqual(t, first, float64(MaxCreditScore))
	})

	t.Run("requires a borrower", func(t *testing.T) {
		_, err := NewCreditBureauAdapter(DefaultCreditBureauConfig(), nil).GetCreditScore(context.Background(), "")
		require.Error(t, err)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		bureau := &fakeBureau{results: []error{errors.New("timeout"), errors.New("503")}, score: 812}
		a := NewCreditBureauAdapter(fastConfig(3), bureau)

		score, err := a.GetCreditScore(context.Background(), "b-1")

		require.NoError(t, err)
		assert.InDelta(t, 812, score, 1e-9)
		assert.Equal(t, 3, bureau.calls)
	})

	t.Run("gives up after the retry budget", func(t *testing.T) {
		boom := errors.New("connection refused")
		bureau := &fakeBureau{results: []error{boom, boom, boom}}
		a := NewCreditBureauAdapter(fastConfig(2), bureau)

		_, err := a.GetCreditScore(context.Background(), "b-1")

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 3, bureau.calls)
	})

	t.Run("does not retry an unknown borrower", func(t *testing.T) {
		bureau := &fakeBureau{results: []error{ErrBorrowerUnknown}}
		a := NewCreditBureauAdapter(fastConfig(5), bureau)

		_, err := a.GetCreditScore(context.Background(), "b-1")

		assert.ErrorIs(t, err, ErrBorrowerUnknown)
		assert.Equal(t, 1, bureau.calls)
	})

	t.Run("stops retrying when the context ends", func(t *testing.T) {
		bureau := &fakeBureau{results: []error{errors.New("x"), errors.New("x"), errors.New("x")}}
		a := NewCreditBureauAdapter(CreditBureauConfig{MaxRetries: 2, RetryBackoff: time.Hour}, bureau)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := a.GetCreditScore(ctx, "b-1")

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, bureau.calls)
	})
}

func TestBureauHTTPClient_FetchCreditReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/bureaus/experian/reports/b-1":
			assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"bureau":"EXPERIAN","borrower_id":"b-1","score":764.5,"score_model":"FICO8"}`))
		case "/v1/bureaus/experian/reports/missing":
			http.NotFound(w, r)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	client := NewBureauHTTPClient(srv.URL+"/", "key", time.Second, nil)

	report, err := client.FetchCreditReport(context.Background(), BureauExperian, "b-1")
	require.NoError(t, err)
	assert.InDelta(t, 764.5, report.Score, 1e-9)
	assert.Equal(t, "FICO8", report.ScoreModel)

	_, err = client.FetchCreditReport(context.Background(), BureauExperian, "missing")
	assert.ErrorIs(t, err, ErrBorrowerUnknown)

	_, err = client.FetchCreditReport(context.Background(), BureauEquifax, "b-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestStubAssetCatalog_GetAsset(t *testing.T) {
	c := NewStubAssetCatalog(money.USDC)

	a, err := c.GetAsset(context.Background(), "token-7")
	require.NoError(t, err)
	b, err := c.GetAsset(context.Background(), "token-7")
	require.NoError(t, err)

	require.NotNil(t, a.RiskScore)
	assert.Equal(t, *a.RiskScore, *b.RiskScore)
	assert.True(t, a.Valuation.Amount().Equal(b.Valuation.Amount()))
	assert.Equal(t, "USDC", a.Valuation.Currency().Code())
	assert.True(t, a.Valuation.Amount().GreaterThanOrEqual(decimal.NewFromInt(10_000)))
	assert.True(t, a.Valuation.Amount().LessThanOrEqual(decimal.NewFromInt(1_000_000)))
	assert.GreaterOrEqual(t, *a.RiskScore, 0.0)
	assert.LessOrEqual(t, *a.RiskScore, 100.0)

	_, err = c.GetAsset(context.Background(), "")
	require.Error(t, err)
}

func TestStaticAssetCatalog_GetAsset(t *testing.T) {
	c := NewStaticAssetCatalog(nil, port.AssetRecord{
		TokenID:   "villa-1",
		Valuation: money.New(decimal.NewFromInt(250_000), money.EUR),
		RiskScore: model.Score(35),
	})

	a, err := c.GetAsset(context.Background(), "villa-1")
	require.NoError(t, err)
	assert.InDelta(t, 35, *a.RiskScore, 1e-9)

	_, err = c.GetAsset(context.Background(), "unknown")
	assert.ErrorIs(t, err, model.ErrAssetNotFound)

	c.Put(port.AssetRecord{TokenID: "unknown", RiskScore: model.Score(80)})
	_, err = c.GetAsset(context.Background(), "unknown")
	assert.NoError(t, err)
}

func TestStaticAssetCatalog_Fallback(t *testing.T) {
	stub := NewStubAssetCatalog(money.USD)
	c := NewStaticAssetCatalog(stub)

	want, err := stub.GetAsset(context.Background(), "tok")
	require.NoError(t, err)
	got, err := c.GetAsset(context.Background(), "tok")
	require.NoError(t, err)
	assert.True(t, want.Valuation.Equal(got.Valuation))

	c.Put(port.AssetRecord{TokenID: "tok", Valuation: money.New(decimal.NewFromInt(5), money.USD), RiskScore: model.Score(99)})
	got, err = c.GetAsset(context.Background(), "tok")
	require.NoError(t, err)
	assert.InDelta(t, 99, *got.RiskScore, 1e-9)
}
