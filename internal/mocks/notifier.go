package mocks

import (
	"context"
	"sync"

	"github.com/brocketdesign/chatlamix/internal/events"
	"github.com/google/uuid"
)

// SentEvent is one recorded notification.
type SentEvent struct {
	OwnerID uuid.UUID
	Event   events.Event
}

// MockNotifier implements events.Notifier for testing, recording every
// notification in order.
type MockNotifier struct {
	// NotifyFn, when set, replaces the recording behavior entirely.
	NotifyFn func(ctx context.Context, ownerID uuid.UUID, event events.Event) error

	// Err, when set, is returned after recording.
	Err error

	mu   sync.Mutex
	sent []SentEvent
}

// Notify implements the Notifier interface.
func (m *MockNotifier) Notify(ctx context.Context, ownerID uuid.UUID, event events.Event) error {
	if m.NotifyFn != nil {
		return m.NotifyFn(ctx, ownerID, event)
	}

	m.mu.Lock()
	m.sent = append(m.sent, SentEvent{OwnerID: ownerID, Event: event})
	m.mu.Unlock()

	return m.Err
}

// Sent returns a copy of the recorded notifications in send order.
func (m *MockNotifier) Sent() []SentEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentEvent(nil), m.sent...)
}

// Names returns just the event names, in send order.
func (m *MockNotifier) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, len(m.sent))
	for i, s := range m.sent {
		names[i] = s.Event.Name
	}
	return names
}
