package api

import (
	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/google/uuid"
)

// GenerateVideoRequest defines the payload for the image-to-video endpoint.
type GenerateVideoRequest struct {
	OwnerID          uuid.UUID `json:"owner_id"           validate:"required"`
	ConversationID   uuid.UUID `json:"conversation_id"    validate:"required"`
	SourceArtifactID uuid.UUID `json:"source_artifact_id" validate:"required"`
	PlaceholderID    string    `json:"placeholder_id"     validate:"required"`
	Prompt           string    `json:"prompt"`
	SourceImageURL   string    `json:"source_image_url"   validate:"required,url"`
}

// GenerateFaceMergeRequest defines the payload for the face-merge endpoint.
type GenerateFaceMergeRequest struct {
	OwnerID          uuid.UUID `json:"owner_id"           validate:"required"`
	ConversationID   uuid.UUID `json:"conversation_id"    validate:"required"`
	SourceArtifactID uuid.UUID `json:"source_artifact_id" validate:"required"`
	PlaceholderID    string    `json:"placeholder_id"     validate:"required"`
	Prompt           string    `json:"prompt"`
	SourceImageURL   string    `json:"source_image_url"   validate:"required,url"`
	TargetImageURL   string    `json:"target_image_url"   validate:"required,url"`
}

// GenerateResponse defines the response for both generation endpoints.
// Async submissions return status "pending" with no artifact; sync
// submissions return "completed" with the finished artifact inline.
type GenerateResponse struct {
	TaskID   string                    `json:"task_id"`
	Status   domain.TaskStatus         `json:"status"`
	Artifact *domain.GeneratedArtifact `json:"artifact,omitempty"`
}

// WebhookPayload is the canonical completion notification body posted by
// async providers to the signed callback URL. Exactly one of media_url or
// error is expected; a payload carrying neither fails the task.
type WebhookPayload struct {
	TaskID          string  `json:"task_id"`
	PlaceholderID   string  `json:"placeholder_id"`
	MediaURL        string  `json:"media_url"`
	DurationSeconds float64 `json:"duration_seconds"`
	SizeBytes       int64   `json:"size_bytes"`
	Error           string  `json:"error"`
}

// WebhookResponse acknowledges a processed completion signal. Duplicate
// deliveries receive the same acknowledgement as first deliveries so
// providers stop retrying.
type WebhookResponse struct {
	Status string `json:"status"`
	TaskID string `json:"task_id,omitempty"`
}
