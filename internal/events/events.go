// Package events publishes booking and transaction lifecycle events.
package events

import (
	"context"
	"sync"
	"time"

	"photosession/internal/pkg/logger"
)

type Type string

const (
	BookingCreated     Type = "booking.created"
	BookingConfirmed   Type = "booking.confirmed"
	BookingStarted     Type = "booking.started"
	BookingCompleted   Type = "booking.completed"
	BookingCancelled   Type = "booking.cancelled"
	BookingRescheduled Type = "booking.rescheduled"
	BookingServices    Type = "booking.services_updated"

	TransactionRecorded  Type = "transaction.recorded"
	TransactionCompleted Type = "transaction.completed"
	TransactionFailed    Type = "transaction.failed"
	TransactionCancelled Type = "transaction.cancelled"
	TransactionRefunded  Type = "transaction.refunded"
)

// Event is the envelope written to the bus. Key is the booking reference so
// all events of one booking land on the same partition.
type Event struct {
	Type       Type      `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	ActorID    int64     `json:"actor_id,omitempty"`
	Payload    any       `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Emit publishes ev and only logs failures. Events are sent after the state
// change is committed and never roll it back.
func Emit(ctx context.Context, p Publisher, ev Event) {
	if p == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if err := p.Publish(ctx, ev); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("event", string(ev.Type)).Str("key", ev.Key).Msg("event publish failed")
	}
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Memory keeps published events in order. Used by tests and local runs
// without a broker.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Publish(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *Memory) Close() error { return nil }

func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

func (m *Memory) Types() []Type {
	var out []Type
	for _, ev := range m.Events() {
		out = append(out, ev.Type)
	}
	return out
}
