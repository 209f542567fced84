package events

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewBaseEvent(t *testing.T) {
	occurred := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	event := NewBaseEvent("pricing.quote.issued", "quote-123", "Quote", "tenant-456", occurred)

	if event.EventID() == "" {
		t.Error("expected non-empty event ID")
	}
	if event.EventType() != "pricing.quote.issued" {
		t.Errorf("expected event type %q, got %q", "pricing.quote.issued", event.EventType())
	}
	if event.AggregateID() != "quote-123" {
		t.Errorf("expected aggregate ID %q, got %q", "quote-123", event.AggregateID())
	}
	if event.AggregateType() != "Quote" {
		t.Errorf("expected aggregate type %q, got %q", "Quote", event.AggregateType())
	}
	if event.TenantID() != "tenant-456" {
		t.Errorf("expected tenant ID %q, got %q", "tenant-456", event.TenantID())
	}
	if !event.OccurredAt().Equal(occurred) || event.OccurredAt().Location() != time.UTC {
		t.Errorf("expected occurredAt %v in UTC, got %v", occurred, event.OccurredAt())
	}
}

func TestNewBaseEvent_UniqueIDs(t *testing.T) {
	now := time.Now()
	a := NewBaseEvent("t", "agg", "Quote", "tenant", now)
	b := NewBaseEvent("t", "agg", "Quote", "tenant", now)
	if a.EventID() == b.EventID() {
		t.Errorf("expected distinct event IDs, both were %q", a.EventID())
	}
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
}

func TestBaseEvent_EmbeddedEnvelopeSerialises(t *testing.T) {
	type quoteIssued struct {
		BaseEvent
		BorrowerID string `json:"borrower_id"`
	}

	evt := quoteIssued{
		BaseEvent:  NewBaseEvent("pricing.quote.issued", "quote-1", "Quote", "tenant-1", time.Now()),
		BorrowerID: "borrower-1",
	}

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"event_id", "event_type", "aggregate_id", "aggregate_type", "tenant_id", "occurred_at", "borrower_id"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("expected key %q in payload %s", key, data)
		}
	}
}
