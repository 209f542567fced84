package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/rwa-lending/internal/domain/event"
	"github.com/bibbank/rwa-lending/internal/domain/port"
	pkgkafka "github.com/bibbank/rwa-lending/pkg/kafka"
)

type recordingProducer struct {
	publishFunc func(ctx context.Context, topic string, messages ...pkgkafka.Message) error
	topic       string
	messages    []pkgkafka.Message
}

func (r *recordingProducer) Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error {
	if r.publishFunc != nil {
		return r.publishFunc(ctx, topic, messages...)
	}
	r.topic = topic
	r.messages = append(r.messages, messages...)
	return nil
}

func TestQuoteEventPublisher_Publish(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("keys by aggregate and sets headers", func(t *testing.T) {
		producer := &recordingProducer{}
		pub := NewQuoteEventPublisher(producer, "rwa-pricing-events", nil)
		issued := event.NewQuoteIssued("q-1", "tenant-1", "b-1", "tok-1",
			decimal.NewFromInt(100_000), "USD", "A", "SAFE",
			decimal.NewFromInt(50), decimal.RequireFromString("6.5"), now.Add(15*time.Minute), now)
		expired := event.NewQuoteExpired("q-1", "tenant-1", "b-1", now)

		require.NoError(t, pub.Publish(context.Background(), issued, expired))

		assert.Equal(t, "rwa-pricing-events", producer.topic)
		require.Len(t, producer.messages, 2)
		msg := producer.messages[0]
		assert.Equal(t, "q-1", string(msg.Key))
		assert.Equal(t, "pricing.quote.issued", msg.Headers["event_type"])
		assert.Equal(t, issued.EventID(), msg.Headers["event_id"])
		assert.Equal(t, "tenant-1", msg.Headers["tenant_id"])
		assert.Equal(t, "pricing.quote.expired", producer.messages[1].Headers["event_type"])

		var body map[string]any
		require.NoError(t, json.Unmarshal(msg.Value, &body))
		assert.Equal(t, "q-1", body["aggregate_id"])
		assert.Equal(t, "SAFE", body["risk_class"])
		assert.Equal(t, "50", body["final_ltv"])
	})

	t.Run("no events is a no-op", func(t *testing.T) {
		producer := &recordingProducer{
			publishFunc: func(context.Context, string, ...pkgkafka.Message) error {
				t.Fatal("producer must not be called")
				return nil
			},
		}
		require.NoError(t, NewQuoteEventPublisher(producer, "t", nil).Publish(context.Background()))
	})

	t.Run("wraps producer failures", func(t *testing.T) {
		boom := errors.New("leader not available")
		producer := &recordingProducer{
			publishFunc: func(context.Context, string, ...pkgkafka.Message) error { return boom },
		}
		err := NewQuoteEventPublisher(producer, "t", nil).
			Publish(context.Background(), event.NewQuoteExpired("q", "t", "b", now))

		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "topic t")
	})
}

type memoryStore struct {
	mu     sync.Mutex
	assets []port.AssetRecord
}

func (m *memoryStore) Put(a port.AssetRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets = append(m.assets, a)
}

func TestAssetValuationHandler(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"valid", `{"token_id":"villa-1","valuation":"250000","currency":"EUR","risk_score":35,"risk_class":"MODERATE"}`, false},
		{"malformed", `{"token_id":`, true},
		{"missing token", `{"valuation":"1","currency":"USD","risk_score":1}`, true},
		{"zero valuation", `{"token_id":"x","valuation":"0","currency":"USD","risk_score":1}`, true},
		{"bad currency", `{"token_id":"x","valuation":"10","currency":"usd","risk_score":1}`, true},
		{"bad risk class", `{"token_id":"x","valuation":"10","currency":"USD","risk_score":1,"risk_class":"WILD"}`, true},
		{"missing risk score", `{"token_id":"x","valuation":"10","currency":"USD"}`, true},
		{"null risk score", `{"token_id":"x","valuation":"10","currency":"USD","risk_score":null}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			handle := NewAssetValuationHandler(store, nil)

			err := handle(context.Background(), pkgkafka.Message{Value: []byte(tt.payload)})

			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, store.assets)
				return
			}
			require.NoError(t, err)
			require.Len(t, store.assets, 1)
			a := store.assets[0]
			assert.Equal(t, "villa-1", a.TokenID)
			assert.Equal(t, "EUR", a.Valuation.Currency().Code())
			assert.True(t, a.Valuation.Amount().Equal(decimal.NewFromInt(250_000)))
			assert.Equal(t, "MODERATE", a.RiskClass.String())
			require.NotNil(t, a.RiskScore)
			assert.InDelta(t, 35, *a.RiskScore, 1e-9)
		})
	}
}
