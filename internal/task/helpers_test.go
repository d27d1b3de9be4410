package task

import (
	"io"
	"log/slog"
	"testing"

	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/brocketdesign/chatlamix/internal/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv bundles the mocks behind one completion pipeline so the tests
// read as scenarios rather than wiring.
type testEnv struct {
	tasks         *mocks.MockTaskStore
	artifacts     *mocks.MockArtifactStore
	conversations *mocks.MockConversationStore
	milestones    *mocks.MockMilestoneStore
	notifier      *mocks.MockNotifier
	txRunner      *mocks.MockTxRunner
	applier       *SideEffectApplier
	handler       *CompletionHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		tasks:         mocks.NewMockTaskStore(),
		artifacts:     mocks.NewMockArtifactStore(),
		conversations: mocks.NewMockConversationStore(),
		milestones:    mocks.NewMockMilestoneStore(),
		notifier:      &mocks.MockNotifier{},
		txRunner:      &mocks.MockTxRunner{},
	}

	log := testLogger()
	env.applier = NewSideEffectApplier(
		env.txRunner,
		env.artifacts,
		env.conversations,
		env.milestones,
		env.notifier,
		nil,
		log,
	)
	env.handler = NewCompletionHandler(env.tasks, env.artifacts, env.applier, env.notifier, log)

	return env
}

// seedTask creates and stores a pending task of the given kind.
func (e *testEnv) seedTask(t *testing.T, kind domain.TaskKind, taskID, placeholderID string) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(kind, taskID, placeholderID, uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	e.tasks.Seed(task)
	return task
}
