package task

import (
	"context"
	"errors"
	"testing"

	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/brocketdesign/chatlamix/internal/events"
	"github.com/brocketdesign/chatlamix/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleCompletion_Success(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	task := env.seedTask(t, domain.TaskKindImageToVideo, "task-1", "ph-1")
	result := &domain.TaskResult{MediaURL: "https://cdn.example.com/v1.mp4", DurationSeconds: 4.2}

	artifact, err := env.handler.HandleCompletion(context.Background(), Signal{
		TaskID: "task-1",
		Result: result,
	})
	require.NoError(t, err)
	require.NotNil(t, artifact)

	assert.Equal(t, "task-1", artifact.TaskID)
	assert.Equal(t, result.MediaURL, artifact.MediaURL)

	stored := env.tasks.Get(store.TaskSelector{TaskID: "task-1"})
	require.NotNil(t, stored)
	assert.Equal(t, domain.TaskStatusCompleted, stored.Status)

	msgs := env.conversations.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, artifact.ID, msgs[0].ArtifactID)

	assert.Equal(t, int64(1),
		env.conversations.Counter(domain.ScopeOwner, task.OwnerID, task.Kind))
	assert.Equal(t, int64(1),
		env.conversations.Counter(domain.ScopeConversation, task.ConversationID, task.Kind))

	names := env.notifier.Names()
	loaderAt := indexOf(names, events.EventVideoLoader)
	generatedAt := indexOf(names, events.EventVideoGenerated)
	require.GreaterOrEqual(t, loaderAt, 0)
	require.GreaterOrEqual(t, generatedAt, 0)
	assert.Less(t, loaderAt, generatedAt, "placeholder removal must precede the artifact event")
}

func indexOf(names []string, want string) int {
	for i, n := range names {
		if n == want {
			return i
		}
	}
	return -1
}

func TestHandleCompletion_DuplicateSignal(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	task := env.seedTask(t, domain.TaskKindImageToVideo, "task-1", "ph-1")
	sig := Signal{
		TaskID: "task-1",
		Result: &domain.TaskResult{MediaURL: "https://cdn.example.com/v1.mp4"},
	}

	first, err := env.handler.HandleCompletion(context.Background(), sig)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := env.handler.HandleCompletion(context.Background(), sig)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID, "duplicate must return the existing artifact")

	assert.Equal(t, 1, env.artifacts.Count())
	assert.Len(t, env.conversations.Messages(), 1)
	assert.Equal(t, int64(1),
		env.conversations.Counter(domain.ScopeOwner, task.OwnerID, task.Kind))
	assert.Equal(t, 1, env.txRunner.Calls, "duplicate must short-circuit before the transaction")
}

func TestHandleCompletion_FailureSignal(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedTask(t, domain.TaskKindImageToVideo, "task-1", "ph-1")

	artifact, err := env.handler.HandleCompletion(context.Background(), Signal{
		TaskID:        "task-1",
		FailureReason: "provider timeout",
	})
	require.NoError(t, err)
	assert.Nil(t, artifact)

	stored := env.tasks.Get(store.TaskSelector{TaskID: "task-1"})
	require.NotNil(t, stored)
	assert.Equal(t, domain.TaskStatusFailed, stored.Status)
	assert.Equal(t, "provider timeout", stored.FailureReason)

	assert.Zero(t, env.artifacts.Count(), "failed task must leave no artifact")
	assert.Empty(t, env.conversations.Messages())

	sent := env.notifier.Sent()
	require.Len(t, sent, 1, "failure still clears the client placeholder")
	assert.Equal(t, events.EventVideoLoader, sent[0].Event.Name)
	payload, ok := sent[0].Event.Payload.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "ph-1", payload["placeholder_id"])
	assert.Equal(t, "provider timeout", payload["error"])
}

func TestHandleCompletion_CorrelationByPlaceholder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedTask(t, domain.TaskKindFaceMerge, "task-1", "ph-1")

	// Signal arrives with only the placeholder ID, e.g. from a callback
	// token minted before the provider assigned a task id.
	artifact, err := env.handler.HandleCompletion(context.Background(), Signal{
		PlaceholderID: "ph-1",
		Result:        &domain.TaskResult{MediaURL: "https://cdn.example.com/m1.png"},
	})
	require.NoError(t, err)
	require.NotNil(t, artifact)
	assert.Equal(t, "task-1", artifact.TaskID)
}

func TestHandleCompletion_UnknownTask(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	_, err := env.handler.HandleCompletion(context.Background(), Signal{
		TaskID: "never-submitted",
		Result: &domain.TaskResult{MediaURL: "https://cdn.example.com/v1.mp4"},
	})
	require.Error(t, err)
	assert.True(t, store.IsNotFoundError(err))
	assert.Zero(t, env.artifacts.Count())
}

func TestHandleCompletion_TerminalTaskIgnoresSignal(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	task := env.seedTask(t, domain.TaskKindImageToVideo, "task-1", "ph-1")
	task.Status = domain.TaskStatusFailed
	env.tasks.GetByCorrelationFn = func(ctx context.Context, taskID, placeholderID string) (*domain.Task, error) {
		return task, nil
	}

	artifact, err := env.handler.HandleCompletion(context.Background(), Signal{
		TaskID: "task-1",
		Result: &domain.TaskResult{MediaURL: "https://cdn.example.com/late.mp4"},
	})
	require.NoError(t, err)
	assert.Nil(t, artifact)
	assert.Zero(t, env.artifacts.Count(), "late success must not resurrect a failed task")
	assert.Empty(t, env.notifier.Sent())
}

func TestHandleCompletion_ApplierFailureFailsTask(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.seedTask(t, domain.TaskKindImageToVideo, "task-1", "ph-1")
	env.txRunner.Err = errors.New("connection reset")

	_, err := env.handler.HandleCompletion(context.Background(), Signal{
		TaskID: "task-1",
		Result: &domain.TaskResult{MediaURL: "https://cdn.example.com/v1.mp4"},
	})
	require.Error(t, err)

	stored := env.tasks.Get(store.TaskSelector{TaskID: "task-1"})
	require.NotNil(t, stored)
	assert.Equal(t, domain.TaskStatusFailed, stored.Status)
	assert.Contains(t, stored.FailureReason, "finalization failed")

	// None of the durable effects may survive a failed transaction.
	assert.Zero(t, env.artifacts.Count())
	assert.Empty(t, env.conversations.Messages())

	names := env.notifier.Names()
	require.Len(t, names, 1)
	assert.Equal(t, events.EventVideoLoader, names[0])
}
