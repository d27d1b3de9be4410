package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// subscriberBuffer is the per-connection channel depth. A subscriber that
// falls further behind than this starts losing events rather than
// stalling publishers.
const subscriberBuffer = 16

// Hub is an in-process Notifier fanning events out to SSE connections,
// one topic per owner id. Publishing never blocks: when a subscriber's
// buffer is full the event is dropped and logged.
type Hub struct {
	mu     sync.Mutex
	topics map[uuid.UUID]map[chan []byte]struct{}
	logger *slog.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		topics: make(map[uuid.UUID]map[chan []byte]struct{}),
		logger: logger.With("component", "events_hub"),
	}
}

// Subscribe registers a connection for the owner's events. The returned
// channel receives encoded event frames; the returned cancel function
// removes the subscription and closes the channel.
func (h *Hub) Subscribe(ownerID uuid.UUID) (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)

	h.mu.Lock()
	subs, ok := h.topics[ownerID]
	if !ok {
		subs = make(map[chan []byte]struct{})
		h.topics[ownerID] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	// Closing under the same lock that guards sends keeps Notify from
	// ever writing to a closed channel.
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if subs, ok := h.topics[ownerID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.topics, ownerID)
				}
			}
			close(ch)
		})
	}

	return ch, cancel
}

// Notify implements Notifier.
func (h *Hub) Notify(ctx context.Context, ownerID uuid.UUID, event Event) error {
	frame, err := event.Encode()
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	count := 0
	for ch := range h.topics[ownerID] {
		count++
		select {
		case ch <- frame:
		default:
			h.logger.Warn("dropping event for slow subscriber",
				"owner_id", ownerID,
				"event", event.Name)
		}
	}

	h.logger.Debug("event published",
		"owner_id", ownerID,
		"event", event.Name,
		"subscribers", count)

	return nil
}

// Subscribers reports how many connections the owner currently has.
func (h *Hub) Subscribers(ownerID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[ownerID])
}
