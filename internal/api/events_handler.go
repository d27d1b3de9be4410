package api

import (
	"fmt"
	"net/http"

	"github.com/brocketdesign/chatlamix/internal/api/shared"
	"github.com/brocketdesign/chatlamix/internal/events"
	"github.com/brocketdesign/chatlamix/internal/platform/logger"
	"github.com/google/uuid"
)

// EventsHandler streams the realtime channel to clients over SSE.
type EventsHandler struct {
	hub *events.Hub
}

// NewEventsHandler creates a new EventsHandler over the given hub.
func NewEventsHandler(hub *events.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// StreamEvents handles GET /api/events?owner_id=... It holds the
// connection open and forwards every event published for the owner as an
// SSE data frame until the client disconnects.
func (h *EventsHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	ownerID, err := uuid.Parse(r.URL.Query().Get("owner_id"))
	if err != nil || ownerID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing or invalid owner_id")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	frames, cancel := h.hub.Subscribe(ownerID)
	defer cancel()

	log := logger.FromContext(r.Context()).With("owner_id", ownerID)
	log.Debug("SSE stream opened")

	for {
		select {
		case <-r.Context().Done():
			log.Debug("SSE stream closed by client")
			return
		case frame, open := <-frames:
			if !open {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", frame); err != nil {
				log.Debug("SSE write failed, closing stream", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
