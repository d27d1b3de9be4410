package api

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/brocketdesign/chatlamix/internal/dedup"
	"github.com/brocketdesign/chatlamix/internal/mocks"
	"github.com/brocketdesign/chatlamix/internal/provider"
	"github.com/brocketdesign/chatlamix/internal/task"
)

const testCallbackSecret = "0123456789abcdef0123456789abcdef"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// pipeline bundles the full submission/completion stack over mocks, the
// way cmd/server wires the real one.
type pipeline struct {
	tasks         *mocks.MockTaskStore
	artifacts     *mocks.MockArtifactStore
	conversations *mocks.MockConversationStore
	notifier      *mocks.MockNotifier
	signer        *provider.CallbackSigner
	completion    *task.CompletionHandler
	service       *task.GenerationService
}

func newPipeline(t *testing.T, adapters ...provider.Adapter) *pipeline {
	t.Helper()

	log := testLogger()
	p := &pipeline{
		tasks:         mocks.NewMockTaskStore(),
		artifacts:     mocks.NewMockArtifactStore(),
		conversations: mocks.NewMockConversationStore(),
		notifier:      &mocks.MockNotifier{},
		signer: provider.NewCallbackSigner(
			testCallbackSecret, time.Hour, "https://api.example.com"),
	}

	applier := task.NewSideEffectApplier(
		&mocks.MockTxRunner{},
		p.artifacts,
		p.conversations,
		mocks.NewMockMilestoneStore(),
		p.notifier,
		nil,
		log,
	)
	p.completion = task.NewCompletionHandler(p.tasks, p.artifacts, applier, p.notifier, log)
	p.service = task.NewGenerationService(
		p.tasks, adapters, dedup.NewGroup(log), p.completion, p.signer, log)

	return p
}
