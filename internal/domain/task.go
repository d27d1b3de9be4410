package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a generation task.
type TaskStatus string

// Possible task status values.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusBackground TaskStatus = "background"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Terminal reports whether the status permits no further transitions.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// TaskKind identifies which generation pipeline a task belongs to.
type TaskKind string

// Supported task kinds.
const (
	TaskKindImageToVideo TaskKind = "image_to_video"
	TaskKindFaceMerge    TaskKind = "face_merge"
)

// Kinds returns every supported task kind. Used by the recovery sweeper
// and the reconciler to iterate over all pipelines.
func Kinds() []TaskKind {
	return []TaskKind{TaskKindImageToVideo, TaskKindFaceMerge}
}

// Common validation errors for Task.
var (
	ErrEmptyTaskID           = errors.New("task correlation ID cannot be empty")
	ErrEmptyTaskOwnerID      = errors.New("task owner ID cannot be empty")
	ErrEmptyConversationID   = errors.New("task conversation ID cannot be empty")
	ErrInvalidTaskKind       = errors.New("invalid task kind")
	ErrInvalidTaskStatus     = errors.New("invalid task status")
	ErrMissingCorrelationKey = errors.New("either a task ID or a placeholder ID is required")
)

// TaskResult holds the provider output reference once the outcome of a
// task is known.
type TaskResult struct {
	MediaURL        string  `json:"media_url"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	SizeBytes       int64   `json:"size_bytes,omitempty"`
}

// Task is the durable record tracking one generation request from
// submission to terminal outcome.
//
// TaskID is the external correlation key (provider-assigned for async
// providers, synthetically generated for sync ones). PlaceholderID is the
// ephemeral client-side token used to clear a UI loading state; it exists
// independently of TaskID because the client creates the placeholder
// before any provider has assigned an id.
type Task struct {
	ID               uuid.UUID   `json:"id"`
	TaskID           string      `json:"task_id"`
	PlaceholderID    string      `json:"placeholder_id"`
	Kind             TaskKind    `json:"kind"`
	OwnerID          uuid.UUID   `json:"owner_id"`
	ConversationID   uuid.UUID   `json:"conversation_id"`
	SourceArtifactID uuid.UUID   `json:"source_artifact_id"`
	Status           TaskStatus  `json:"status"`
	Result           *TaskResult `json:"result,omitempty"`
	FailureReason    string      `json:"failure_reason,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// NewTask creates a pending Task for the given request coordinates.
// Returns an error if validation fails.
func NewTask(
	kind TaskKind,
	taskID string,
	placeholderID string,
	ownerID uuid.UUID,
	conversationID uuid.UUID,
	sourceArtifactID uuid.UUID,
) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:               uuid.New(),
		TaskID:           taskID,
		PlaceholderID:    placeholderID,
		Kind:             kind,
		OwnerID:          ownerID,
		ConversationID:   conversationID,
		SourceArtifactID: sourceArtifactID,
		Status:           TaskStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks that the Task carries valid data.
func (t *Task) Validate() error {
	if t.TaskID == "" && t.PlaceholderID == "" {
		return ErrMissingCorrelationKey
	}

	if t.OwnerID == uuid.Nil {
		return ErrEmptyTaskOwnerID
	}

	if t.ConversationID == uuid.Nil {
		return ErrEmptyConversationID
	}

	if !isValidTaskKind(t.Kind) {
		return ErrInvalidTaskKind
	}

	if !isValidTaskStatus(t.Status) {
		return ErrInvalidTaskStatus
	}

	return nil
}

func isValidTaskKind(kind TaskKind) bool {
	switch kind {
	case TaskKindImageToVideo, TaskKindFaceMerge:
		return true
	default:
		return false
	}
}

func isValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusProcessing, TaskStatusBackground,
		TaskStatusCompleted, TaskStatusFailed:
		return true
	default:
		return false
	}
}
