package amqp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"fincal/internal/resilience"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"closed channel", errors.New("message channel closed"), true},
		{"not connected", fmt.Errorf("consume: %w", ErrNotConnected), true},
		{"other", errors.New("some other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClient_PublishEventSync(t *testing.T) {
	newClient := func() *Client {
		return &Client{
			exchangeName: "test_exchange",
			queueName:    "test_queue",
			cb:           resilience.NewCircuitBreaker("test"),
		}
	}

	t.Run("not connected", func(t *testing.T) {
		err := newClient().PublishEventSync(context.Background(), "evt-1", OperationUpsert)
		if !errors.Is(err, ErrNotConnected) {
			t.Fatalf("expected ErrNotConnected, got %v", err)
		}
	})

	t.Run("circuit opens after repeated failures", func(t *testing.T) {
		c := newClient()
		for i := 0; i < 5; i++ {
			_ = c.PublishEventSync(context.Background(), "evt-1", OperationUpsert)
		}
		err := c.PublishEventSync(context.Background(), "evt-1", OperationUpsert)
		if !errors.Is(err, gobreaker.ErrOpenState) {
			t.Fatalf("expected open circuit, got %v", err)
		}
	})

	t.Run("invalid operation", func(t *testing.T) {
		err := newClient().PublishEventSync(context.Background(), "evt-1", "merge")
		if !errors.Is(err, ErrInvalidMessage) {
			t.Fatalf("expected ErrInvalidMessage, got %v", err)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := newClient().PublishEventSync(ctx, "evt-1", OperationDelete); err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}

func TestEventSyncMessage_JSON(t *testing.T) {
	msg := &EventSyncMessage{
		EventID:   "evt-1",
		Operation: OperationDelete,
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	parsed, err := EventSyncMessageFromJSON(data)
	if err != nil {
		t.Fatalf("EventSyncMessageFromJSON() error = %v", err)
	}
	if parsed.EventID != msg.EventID || parsed.Operation != msg.Operation || !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Fatalf("parsed %+v, want %+v", parsed, msg)
	}
}

func TestEventSyncMessageFromJSON_Invalid(t *testing.T) {
	for _, body := range []string{
		`{"event_id": 5}`,
		`{"event_id": "", "operation": "upsert"}`,
		`{"event_id": "a", "operation": "merge"}`,
	} {
		if _, err := EventSyncMessageFromJSON([]byte(body)); err == nil {
			t.Fatalf("expected error for %s", body)
		}
	}
}

func TestNewEventSyncMessage(t *testing.T) {
	msg := NewEventSyncMessage("evt-9", OperationUpsert)
	if msg.EventID != "evt-9" || msg.Operation != OperationUpsert {
		t.Fatalf("unexpected message %+v", msg)
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Fatal("timestamp should be recent")
	}
}
