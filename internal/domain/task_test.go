package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	conversationID := uuid.New()
	sourceID := uuid.New()

	t.Run("creates pending task with valid data", func(t *testing.T) {
		task, err := NewTask(
			TaskKindImageToVideo,
			"prov-123",
			"ph-456",
			ownerID,
			conversationID,
			sourceID,
		)

		require.NoError(t, err)
		assert.Equal(t, TaskStatusPending, task.Status)
		assert.Equal(t, "prov-123", task.TaskID)
		assert.Equal(t, "ph-456", task.PlaceholderID)
		assert.NotEqual(t, uuid.Nil, task.ID)
		assert.False(t, task.CreatedAt.IsZero())
	})

	t.Run("accepts placeholder-only correlation", func(t *testing.T) {
		task, err := NewTask(TaskKindFaceMerge, "", "ph-only", ownerID, conversationID, sourceID)

		require.NoError(t, err)
		assert.Empty(t, task.TaskID)
	})

	t.Run("rejects missing correlation keys", func(t *testing.T) {
		_, err := NewTask(TaskKindFaceMerge, "", "", ownerID, conversationID, sourceID)

		assert.ErrorIs(t, err, ErrMissingCorrelationKey)
	})

	t.Run("rejects empty owner", func(t *testing.T) {
		_, err := NewTask(TaskKindFaceMerge, "t", "p", uuid.Nil, conversationID, sourceID)

		assert.ErrorIs(t, err, ErrEmptyTaskOwnerID)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := NewTask(TaskKind("hologram"), "t", "p", ownerID, conversationID, sourceID)

		assert.ErrorIs(t, err, ErrInvalidTaskKind)
	})
}

func TestTaskStatusTerminal(t *testing.T) {
	t.Parallel()

	assert.True(t, TaskStatusCompleted.Terminal())
	assert.True(t, TaskStatusFailed.Terminal())
	assert.False(t, TaskStatusPending.Terminal())
	assert.False(t, TaskStatusProcessing.Terminal())
	assert.False(t, TaskStatusBackground.Terminal())
}

func TestNewGeneratedArtifact(t *testing.T) {
	t.Parallel()

	task, err := NewTask(
		TaskKindImageToVideo,
		"prov-1",
		"ph-1",
		uuid.New(),
		uuid.New(),
		uuid.New(),
	)
	require.NoError(t, err)

	t.Run("copies task coordinates and result", func(t *testing.T) {
		artifact, err := NewGeneratedArtifact(task, &TaskResult{
			MediaURL:        "https://cdn.example.com/v/1.mp4",
			DurationSeconds: 6.5,
		})

		require.NoError(t, err)
		assert.Equal(t, task.TaskID, artifact.TaskID)
		assert.Equal(t, task.OwnerID, artifact.OwnerID)
		assert.Equal(t, task.ConversationID, artifact.ConversationID)
		assert.Equal(t, 6.5, artifact.DurationSeconds)
	})

	t.Run("rejects empty media URL", func(t *testing.T) {
		_, err := NewGeneratedArtifact(task, &TaskResult{})

		assert.ErrorIs(t, err, ErrEmptyArtifactURL)
	})
}

func TestNewConversationMessage(t *testing.T) {
	t.Parallel()

	task, err := NewTask(TaskKindFaceMerge, "prov-2", "", uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)

	artifact, err := NewGeneratedArtifact(task, &TaskResult{MediaURL: "https://cdn.example.com/m/2.png"})
	require.NoError(t, err)

	msg, err := NewConversationMessage(artifact)

	require.NoError(t, err)
	assert.Equal(t, artifact.ID, msg.ArtifactID)
	assert.Equal(t, artifact.ConversationID, msg.ConversationID)
	assert.Equal(t, artifact.MediaURL, msg.MediaURL)
	assert.NotEmpty(t, msg.Body)
}

func TestNewMilestoneAward(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	t.Run("creates award with valid data", func(t *testing.T) {
		award, err := NewMilestoneAward(ownerID, ScopeOwner, ownerID, TaskKindImageToVideo, 10)

		require.NoError(t, err)
		assert.Equal(t, int64(10), award.Threshold)
	})

	t.Run("rejects non-positive threshold", func(t *testing.T) {
		_, err := NewMilestoneAward(ownerID, ScopeOwner, ownerID, TaskKindImageToVideo, 0)

		assert.ErrorIs(t, err, ErrNonPositiveThreshold)
	})

	t.Run("rejects unknown scope", func(t *testing.T) {
		_, err := NewMilestoneAward(ownerID, CounterScope("galaxy"), ownerID, TaskKindImageToVideo, 1)

		assert.ErrorIs(t, err, ErrInvalidAwardScope)
	})
}
