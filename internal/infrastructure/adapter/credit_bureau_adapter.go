package adapter

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bibbank/rwa-lending/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Credit Bureau Adapter
// ---------------------------------------------------------------------------

// Bureau identifies a credit bureau provider.
type Bureau string

const (
	BureauExperian   Bureau = "EXPERIAN"
	BureauTransUnion Bureau = "TRANSUNION"
	BureauEquifax    Bureau = "EQUIFAX"
)

// MaxCreditScore is the top of the scale the adapter reports on.
const MaxCreditScore = 1000

// ErrBorrowerUnknown is returned when the bureau holds no file for the borrower.
var ErrBorrowerUnknown = fmt.Errorf("credit bureau: %w", model.ErrBorrowerNotFound)

// CreditBureauConfig holds configuration for the credit bureau adapter.
type CreditBureauConfig struct {
	PrimaryBureau Bureau
	// MaxRetries is the number of retries after the first attempt on
	// transient failures.
	MaxRetries   int
	RetryBackoff time.Duration
}

// DefaultCreditBureauConfig returns sensible defaults for development.
func DefaultCreditBureauConfig() CreditBureauConfig {
	return CreditBureauConfig{
		PrimaryBureau: BureauExperian,
		MaxRetries:    3,
		RetryBackoff:  200 * time.Millisecond,
	}
}

// CreditReport is the part of a bureau report the pricing service reads.
type CreditReport struct {
	Bureau     Bureau    `json:"bureau"`
	BorrowerID string    `json:"borrower_id"`
	Score      float64   `json:"score"`
	ScoreModel string    `json:"score_model"`
	ReportDate time.Time `json:"report_date"`
}

// HTTPClient fetches reports from a bureau. Swapped for a fake in tests.
type HTTPClient interface {
	FetchCreditReport(ctx context.Context, bureau Bureau, borrowerID string) (CreditReport, error)
}

// CreditBureauAdapter implements port.CreditProfileProvider. With a nil
// client it returns a deterministic simulated score.
type CreditBureauAdapter struct {
	config CreditBureauConfig
	client HTTPClient
}

// NewCreditBureauAdapter creates a new adapter with the given configuration.
func NewCreditBureauAdapter(config CreditBureauConfig, client HTTPClient) *CreditBureauAdapter {
	return &CreditBureauAdapter{config: config, client: client}
}

// GetCreditScore returns the borrower's score on a 0-1000 scale. Scores the
// bureau reports outside the scale are passed through; the engine clamps them.
func (a *CreditBureauAdapter) GetCreditScore(ctx context.Context, borrowerID string) (float64, error) {
	if borrowerID == "" {
		return 0, errors.New("borrower ID is required")
	}
	if a.client == nil {
		return SimulatedCreditScore(borrowerID), nil
	}
	report, err := a.fetchWithRetry(ctx, borrowerID)
	if err != nil {
		return 0, fmt.Errorf("credit bureau request failed: %w", err)
	}
	return report.Score, nil
}

// fetchWithRetry calls the bureau with exponential backoff plus jitter.
// ErrBorrowerUnknown is not retried.
func (a *CreditBureauAdapter) fetchWithRetry(ctx context.Context, borrowerID string) (CreditReport, error) {
	var lastErr error

	for attempt := 0; attempt <= a.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := a.config.RetryBackoff * time.Duration(1<<uint(attempt-1))
			var jitter time.Duration
			if half := int64(backoff) / 2; half > 0 {
				jitter = time.Duration(rand.Int63n(half))
			}
			select {
			case <-ctx.Done():
				return CreditReport{}, ctx.Err()
			case <-time.After(backoff + jitter):
			}
		}

		report, err := a.client.FetchCreditReport(ctx, a.config.PrimaryBureau, borrowerID)
		if err == nil {
			return report, nil
		}
		if errors.Is(err, ErrBorrowerUnknown) {
			return CreditReport{}, err
		}
		lastErr = err
	}

	return CreditReport{}, fmt.Errorf("exhausted %d retries: %w", a.config.MaxRetries, lastErr)
}

// SimulatedCreditScore derives a reproducible score in [0, 1000] from the
// borrower ID.
func SimulatedCreditScore(borrowerID string) float64 {
	h := sha256.Sum256([]byte(borrowerID))
	return float64(binary.BigEndian.Uint32(h[:4]) % (MaxCreditScore + 1))
}

// ---------------------------------------------------------------------------
// JSON over HTTP bureau client
// ---------------------------------------------------------------------------

// BureauHTTPClient reads reports from GET {baseURL}/v1/bureaus/{bureau}/reports/{id}.
type BureauHTTPClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewBureauHTTPClient builds a client. A nil httpClient gets one with the
// given timeout.
func NewBureauHTTPClient(baseURL, apiKey string, timeout time.Duration, httpClient *http.Client) *BureauHTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &BureauHTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

// FetchCreditReport implements HTTPClient.
func (c *BureauHTTPClient) FetchCreditReport(ctx context.Context, bureau Bureau, borrowerID string) (CreditReport, error) {
	endpoint := fmt.Sprintf("%s/v1/bureaus/%s/reports/%s",
		c.baseURL, url.PathEscape(strings.ToLower(string(bureau))), url.PathEscape(borrowerID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return CreditReport{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return CreditReport{}, fmt.Errorf("call bureau: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return CreditReport{}, ErrBorrowerUnknown
	case resp.StatusCode != http.StatusOK:
		return CreditReport{}, fmt.Errorf("bureau returned status %d", resp.StatusCode)
	}

	var report CreditReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return CreditReport{}, fmt.Errorf("decode report: %w", err)
	}
	return report, nil
}
