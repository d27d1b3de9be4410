package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for ConversationMessage.
var (
	ErrEmptyMessageArtifactID     = errors.New("message artifact ID cannot be empty")
	ErrEmptyMessageConversationID = errors.New("message conversation ID cannot be empty")
)

// ConversationMessage is the synthetic transcript entry appended once per
// completed task to surface the generated artifact inside a conversation.
//
// ArtifactID is unique across messages: repeated finalization attempts
// detect "already appended" through it and no-op instead of duplicating
// the transcript entry.
type ConversationMessage struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	OwnerID        uuid.UUID `json:"owner_id"`
	ArtifactID     uuid.UUID `json:"artifact_id"`
	Kind           TaskKind  `json:"kind"`
	Body           string    `json:"body"`
	MediaURL       string    `json:"media_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewConversationMessage builds the synthetic message announcing the
// given artifact in its conversation.
func NewConversationMessage(artifact *GeneratedArtifact) (*ConversationMessage, error) {
	msg := &ConversationMessage{
		ID:             uuid.New(),
		ConversationID: artifact.ConversationID,
		OwnerID:        artifact.OwnerID,
		ArtifactID:     artifact.ID,
		Kind:           artifact.Kind,
		Body:           messageBody(artifact.Kind),
		MediaURL:       artifact.MediaURL,
		CreatedAt:      time.Now().UTC(),
	}

	if err := msg.Validate(); err != nil {
		return nil, err
	}

	return msg, nil
}

// Validate checks that the ConversationMessage carries valid data.
func (m *ConversationMessage) Validate() error {
	if m.ArtifactID == uuid.Nil {
		return ErrEmptyMessageArtifactID
	}

	if m.ConversationID == uuid.Nil {
		return ErrEmptyMessageConversationID
	}

	if !isValidTaskKind(m.Kind) {
		return ErrInvalidTaskKind
	}

	return nil
}

func messageBody(kind TaskKind) string {
	switch kind {
	case TaskKindImageToVideo:
		return "generated a video"
	case TaskKindFaceMerge:
		return "generated a merged image"
	default:
		return fmt.Sprintf("generated %s output", kind)
	}
}
