package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func TestHub(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	t.Run("delivers events to the owner's subscribers", func(t *testing.T) {
		hub := newTestHub()

		ch, cancel := hub.Subscribe(ownerID)
		defer cancel()

		err := hub.Notify(context.Background(), ownerID, Event{
			Name:    EventVideoGenerated,
			Payload: map[string]string{"media_url": "https://cdn.example.com/v/1.mp4"},
		})
		require.NoError(t, err)

		frame := <-ch
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(frame, &decoded))
		assert.Equal(t, EventVideoGenerated, decoded["event"])
	})

	t.Run("does not deliver to other owners", func(t *testing.T) {
		hub := newTestHub()

		ch, cancel := hub.Subscribe(uuid.New())
		defer cancel()

		require.NoError(t, hub.Notify(context.Background(), ownerID, Event{Name: EventRefreshGoals}))

		assert.Empty(t, ch)
	})

	t.Run("notify without subscribers is a no-op", func(t *testing.T) {
		hub := newTestHub()

		assert.NoError(t, hub.Notify(context.Background(), ownerID, Event{Name: EventVideoLoader}))
	})

	t.Run("cancel removes the subscription", func(t *testing.T) {
		hub := newTestHub()

		_, cancel := hub.Subscribe(ownerID)
		assert.Equal(t, 1, hub.Subscribers(ownerID))

		cancel()
		cancel() // idempotent

		assert.Equal(t, 0, hub.Subscribers(ownerID))
	})

	t.Run("full subscriber drops events instead of blocking", func(t *testing.T) {
		hub := newTestHub()

		_, cancel := hub.Subscribe(ownerID)
		defer cancel()

		for i := 0; i < subscriberBuffer+5; i++ {
			require.NoError(t, hub.Notify(context.Background(), ownerID, Event{Name: EventRefreshGoals}))
		}
	})
}
