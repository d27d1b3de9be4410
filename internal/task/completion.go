package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/brocketdesign/chatlamix/internal/events"
	"github.com/brocketdesign/chatlamix/internal/platform/logger"
	"github.com/brocketdesign/chatlamix/internal/store"
)

// CompletionHandler finalizes tasks exactly once when a completion signal
// arrives, whether by webhook or by reconciliation poll. It is the effect
// executor of the completion state machine; Decide is its decision half.
type CompletionHandler struct {
	tasks      store.TaskStore
	artifacts  store.ArtifactStore
	applier    *SideEffectApplier
	notifier   events.Notifier
	bestEffort *BestEffort
	logger     *slog.Logger
}

// NewCompletionHandler wires the handler.
func NewCompletionHandler(
	tasks store.TaskStore,
	artifacts store.ArtifactStore,
	applier *SideEffectApplier,
	notifier events.Notifier,
	log *slog.Logger,
) *CompletionHandler {
	componentLogger := log.With("component", "completion_handler")
	return &CompletionHandler{
		tasks:      tasks,
		artifacts:  artifacts,
		applier:    applier,
		notifier:   notifier,
		bestEffort: &BestEffort{Logger: componentLogger},
		logger:     componentLogger,
	}
}

// HandleCompletion processes one completion signal. The same signal may
// arrive more than once; every path through here is idempotent.
func (h *CompletionHandler) HandleCompletion(ctx context.Context, sig Signal) (*domain.GeneratedArtifact, error) {
	log := logger.FromContextOrDefault(ctx, h.logger).With(
		"task_id", sig.TaskID,
		"placeholder_id", sig.PlaceholderID,
	)

	t, err := h.tasks.GetByCorrelation(ctx, sig.TaskID, sig.PlaceholderID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up task for completion signal: %w", err)
	}

	// Primary idempotency guard: an artifact for this task means a prior
	// delivery already finalized it. Return the existing result without
	// re-applying any side effect.
	if existing, artErr := h.artifacts.GetByTaskID(ctx, t.TaskID); artErr == nil {
		log.Info("completion already finalized, ignoring duplicate signal")
		return existing, nil
	} else if !store.IsNotFoundError(artErr) {
		return nil, fmt.Errorf("failed to check for existing artifact: %w", artErr)
	}

	switch Decide(t.Status, sig) {
	case DecisionIgnore:
		log.Info("ignoring signal for terminal task", "status", t.Status)
		return nil, nil

	case DecisionFail:
		h.fail(ctx, t, failureReason(sig), log)
		return nil, nil

	case DecisionFinalize:
		artifact, applyErr := h.applier.Apply(ctx, t, sig.Result)
		if applyErr != nil {
			// The artifact write did not happen; fail the task but make
			// sure the client placeholder still goes away.
			h.fail(ctx, t, fmt.Sprintf("finalization failed: %v", applyErr), log)
			return nil, applyErr
		}

		sel := store.TaskSelector{TaskID: t.TaskID, PlaceholderID: t.PlaceholderID}
		applied, completeErr := h.tasks.CompleteOnce(ctx, sel, sig.Result)
		if completeErr != nil {
			return nil, fmt.Errorf("failed to mark task completed: %w", completeErr)
		}
		if !applied {
			log.Info("task was already completed by a concurrent signal")
		} else {
			log.Info("task completed", "media_url", sig.Result.MediaURL)
		}

		return artifact, nil
	}

	return nil, nil
}

// fail moves the task to failed and still clears the client placeholder:
// a lost placeholder is a worse failure than a lost notification.
func (h *CompletionHandler) fail(ctx context.Context, t *domain.Task, reason string, log *slog.Logger) {
	sel := store.TaskSelector{TaskID: t.TaskID, PlaceholderID: t.PlaceholderID}
	if err := h.tasks.UpdateStatus(ctx, sel, domain.TaskStatusFailed, reason); err != nil {
		log.Error("failed to mark task failed", "error", err, "reason", reason)
	} else {
		log.Warn("task failed", "reason", reason)
	}

	h.bestEffort.Run(ctx, "notify_failure", func(ctx context.Context) error {
		return h.notifier.Notify(ctx, t.OwnerID, events.Event{
			Name: events.EventVideoLoader,
			Payload: map[string]string{
				"placeholder_id": t.PlaceholderID,
				"error":          reason,
			},
		})
	})
}
