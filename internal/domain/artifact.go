package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for GeneratedArtifact.
var (
	ErrEmptyArtifactTaskID  = errors.New("artifact task ID cannot be empty")
	ErrEmptyArtifactOwnerID = errors.New("artifact owner ID cannot be empty")
	ErrEmptyArtifactURL     = errors.New("artifact media URL cannot be empty")
)

// GeneratedArtifact is the durable output of a completed generation task:
// a video produced from a source image, or a merged image.
//
// TaskID is a back-reference, not ownership; the task row outlives the
// completion flow and is never deleted by this subsystem. At most one
// artifact may exist per task, and no two artifacts may share the same
// (owner, source artifact, media URL) triple.
type GeneratedArtifact struct {
	ID               uuid.UUID `json:"id"`
	TaskID           string    `json:"task_id"`
	Kind             TaskKind  `json:"kind"`
	OwnerID          uuid.UUID `json:"owner_id"`
	ConversationID   uuid.UUID `json:"conversation_id"`
	SourceArtifactID uuid.UUID `json:"source_artifact_id"`
	MediaURL         string    `json:"media_url"`
	DurationSeconds  float64   `json:"duration_seconds,omitempty"`
	SizeBytes        int64     `json:"size_bytes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewGeneratedArtifact builds the artifact produced by the given task
// with the given provider result. Returns an error if validation fails.
func NewGeneratedArtifact(task *Task, result *TaskResult) (*GeneratedArtifact, error) {
	artifact := &GeneratedArtifact{
		ID:               uuid.New(),
		TaskID:           task.TaskID,
		Kind:             task.Kind,
		OwnerID:          task.OwnerID,
		ConversationID:   task.ConversationID,
		SourceArtifactID: task.SourceArtifactID,
		MediaURL:         result.MediaURL,
		DurationSeconds:  result.DurationSeconds,
		SizeBytes:        result.SizeBytes,
		CreatedAt:        time.Now().UTC(),
	}

	if err := artifact.Validate(); err != nil {
		return nil, err
	}

	return artifact, nil
}

// Validate checks that the GeneratedArtifact carries valid data.
func (a *GeneratedArtifact) Validate() error {
	if a.TaskID == "" {
		return ErrEmptyArtifactTaskID
	}

	if a.OwnerID == uuid.Nil {
		return ErrEmptyArtifactOwnerID
	}

	if a.MediaURL == "" {
		return ErrEmptyArtifactURL
	}

	if !isValidTaskKind(a.Kind) {
		return ErrInvalidTaskKind
	}

	return nil
}
