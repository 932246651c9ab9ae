package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Sync operations.
const (
	OperationUpsert = "upsert"
	OperationDelete = "delete"
)

var ErrInvalidMessage = errors.New("invalid sync message")

// EventSyncMessage asks the worker to mirror one local event to the remote
// calendar. It carries only the id; the worker reads the event from the
// local store so a stale message never overwrites newer data.
type EventSyncMessage struct {
	EventID   string    `json:"event_id"`
	Operation string    `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEventSyncMessage(eventID, operation string) *EventSyncMessage {
	return &EventSyncMessage{
		EventID:   eventID,
		Operation: operation,
		Timestamp: time.Now(),
	}
}

func (m *EventSyncMessage) Validate() error {
	if m.EventID == "" {
		return fmt.Errorf("%w: missing event id", ErrInvalidMessage)
	}
	switch m.Operation {
	case OperationUpsert, OperationDelete:
		return nil
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidMessage, m.Operation)
	}
}

// ToJSON converts the message to JSON bytes
func (m *EventSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventSyncMessageFromJSON decodes and validates a message.
func EventSyncMessageFromJSON(data []byte) (*EventSyncMessage, error) {
	var msg EventSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
