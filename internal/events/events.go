// Package events carries realtime notifications from task finalization to
// connected clients. Delivery is point-to-point, keyed by owner id, and
// best-effort: a slow or absent client never blocks finalization.
package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// Event names pushed over the realtime channel.
const (
	// EventVideoLoader tells the client to remove the loading placeholder
	// for a task. Sent on both success and failure paths; a stuck
	// placeholder is a worse failure than a lost notification.
	EventVideoLoader = "handleVideoLoader"

	// EventVideoGenerated announces a freshly completed video artifact.
	EventVideoGenerated = "videoGenerated"

	// EventMergeGenerated announces a freshly completed merged image.
	EventMergeGenerated = "mergeGenerated"

	// EventRefreshGoals tells the client to re-read milestone progress.
	EventRefreshGoals = "refreshGoals"
)

// Event is one notification: a name and a small JSON payload.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"data,omitempty"`
}

// Encode renders the event as the JSON frame sent over the wire.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier defines the outbound realtime channel.
type Notifier interface {
	// Notify pushes the event to every connection of the given owner.
	// Delivery is best-effort; an error means the event could not even be
	// handed to the channel, not that no client saw it.
	Notify(ctx context.Context, ownerID uuid.UUID, event Event) error
}
