package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
}

// InitMetrics initializes the Prometheus metrics exporter on a private
// registry. Returns the MeterProvider and an HTTP handler for the /metrics
// endpoint.
func InitMetrics(cfg MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(serviceResource(cfg.ServiceName)),
	)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return provider, handler, nil
}

// ---------------------------------------------------------------------------
// QuoteMetrics
// ---------------------------------------------------------------------------

// QuoteMetrics records pricing activity. A nil *QuoteMetrics records nothing.
type QuoteMetrics struct {
	issued  metric.Int64Counter
	cache   metric.Int64Counter
	latency metric.Float64Histogram
}

// NewQuoteMetrics registers the pricing instruments on mp.
func NewQuoteMetrics(mp metric.MeterProvider) (*QuoteMetrics, error) {
	meter := mp.Meter("github.com/bibbank/rwa-lending/pricing")

	issued, err := meter.Int64Counter("quotes_issued_total",
		metric.WithDescription("Quotes issued, by credit tier and asset risk class."))
	if err != nil {
		return nil, fmt.Errorf("create quotes_issued_total: %w", err)
	}
	cache, err := meter.Int64Counter("quote_cache_lookups_total",
		metric.WithDescription("Engine result cache lookups, by outcome."))
	if err != nil {
		return nil, fmt.Errorf("create quote_cache_lookups_total: %w", err)
	}
	latency, err := meter.Float64Histogram("quote_request_duration_seconds",
		metric.WithDescription("End-to-end latency of quote requests."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create quote_request_duration_seconds: %w", err)
	}

	return &QuoteMetrics{issued: issued, cache: cache, latency: latency}, nil
}

// QuoteIssued counts one issued quote.
func (m *QuoteMetrics) QuoteIssued(ctx context.Context, tier, riskClass string) {
	if m == nil {
		return
	}
	m.issued.Add(ctx, 1, metric.WithAttributes(
		attribute.String("credit_tier", tier),
		attribute.String("risk_class", riskClass),
	))
}

// CacheLookup counts one cache lookup.
func (m *QuoteMetrics) CacheLookup(ctx context.Context, hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cache.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// ObserveLatency records the duration of one quote request.
func (m *QuoteMetrics) ObserveLatency(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.latency.Record(ctx, d.Seconds())
}
