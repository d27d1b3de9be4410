package task

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/brocketdesign/chatlamix/internal/events"
	"github.com/brocketdesign/chatlamix/internal/platform/logger"
	"github.com/brocketdesign/chatlamix/internal/store"
	"github.com/google/uuid"
)

// DefaultMilestoneThresholds are the generation counts that earn an
// award, both globally per owner and within a single conversation.
var DefaultMilestoneThresholds = []int64{1, 10, 50, 100}

// SideEffectApplier applies the completion side effects of a finalized
// task as one idempotent unit. The durable core (artifact, transcript
// message, counters) runs inside a single transaction; milestone
// evaluation and realtime notifications run after commit and are
// best-effort.
type SideEffectApplier struct {
	txRunner      store.TxRunner
	artifacts     store.ArtifactStore
	conversations store.ConversationStore
	milestones    store.MilestoneStore
	notifier      events.Notifier
	bestEffort    *BestEffort
	thresholds    []int64
	logger        *slog.Logger
}

// NewSideEffectApplier wires the applier. A nil thresholds slice falls
// back to DefaultMilestoneThresholds.
func NewSideEffectApplier(
	txRunner store.TxRunner,
	artifacts store.ArtifactStore,
	conversations store.ConversationStore,
	milestones store.MilestoneStore,
	notifier events.Notifier,
	thresholds []int64,
	log *slog.Logger,
) *SideEffectApplier {
	if thresholds == nil {
		thresholds = DefaultMilestoneThresholds
	}
	componentLogger := log.With("component", "side_effect_applier")
	return &SideEffectApplier{
		txRunner:      txRunner,
		artifacts:     artifacts,
		conversations: conversations,
		milestones:    milestones,
		notifier:      notifier,
		bestEffort:    &BestEffort{Logger: componentLogger},
		thresholds:    thresholds,
		logger:        componentLogger,
	}
}

// SetAttemptObserver installs a hook observing every best-effort attempt.
func (a *SideEffectApplier) SetAttemptObserver(fn func(name string, err error)) {
	a.bestEffort.OnAttempt = fn
}

// Apply persists the artifact, appends the transcript message, bumps the
// counters, evaluates milestones, and notifies the owner's clients.
// Calling Apply again for the same task is a successful no-op returning
// the existing artifact: duplicates are detected, never errors.
func (a *SideEffectApplier) Apply(
	ctx context.Context,
	t *domain.Task,
	result *domain.TaskResult,
) (*domain.GeneratedArtifact, error) {
	log := logger.FromContextOrDefault(ctx, a.logger).With(
		"task_id", t.TaskID,
		"kind", t.Kind,
	)

	artifact, err := domain.NewGeneratedArtifact(t, result)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	var (
		created    bool
		ownerCount int64
		convCount  int64
	)

	err = a.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		artifacts := a.artifacts.WithTx(tx)
		conversations := a.conversations.WithTx(tx)

		if createErr := artifacts.Create(ctx, artifact); createErr != nil {
			if !store.IsDuplicateError(createErr) {
				return createErr
			}

			existing, lookupErr := a.lookupExisting(ctx, artifacts, t, result)
			if lookupErr != nil {
				return lookupErr
			}
			artifact = existing
			created = false
			log.Info("artifact already persisted, reusing",
				"artifact_id", artifact.ID)
		} else {
			created = true
		}

		msg, msgErr := domain.NewConversationMessage(artifact)
		if msgErr != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, msgErr)
		}

		appended, appendErr := conversations.AppendMessage(ctx, msg)
		if appendErr != nil {
			return appendErr
		}
		if !appended {
			log.Debug("transcript message already present", "artifact_id", artifact.ID)
		}

		// Counters move only when this call created the artifact;
		// the duplicate-detected path must never double count.
		if created {
			var countErr error
			ownerCount, countErr = conversations.IncrementCounter(
				ctx, domain.ScopeOwner, t.OwnerID, t.Kind)
			if countErr != nil {
				return countErr
			}
			convCount, countErr = conversations.IncrementCounter(
				ctx, domain.ScopeConversation, t.ConversationID, t.Kind)
			if countErr != nil {
				return countErr
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		a.bestEffort.Run(ctx, "milestones", func(ctx context.Context) error {
			return a.evaluateMilestones(ctx, t, ownerCount, convCount)
		})
	}

	a.bestEffort.Run(ctx, "notify", func(ctx context.Context) error {
		return a.notifyCompletion(ctx, t, artifact)
	})

	return artifact, nil
}

// lookupExisting resolves the artifact that caused a duplicate conflict,
// first by task id, then by the content uniqueness triple.
func (a *SideEffectApplier) lookupExisting(
	ctx context.Context,
	artifacts store.ArtifactStore,
	t *domain.Task,
	result *domain.TaskResult,
) (*domain.GeneratedArtifact, error) {
	existing, err := artifacts.GetByTaskID(ctx, t.TaskID)
	if err == nil {
		return existing, nil
	}
	if !store.IsNotFoundError(err) {
		return nil, err
	}

	return artifacts.GetByContent(ctx, t.OwnerID, t.SourceArtifactID, result.MediaURL)
}

func (a *SideEffectApplier) evaluateMilestones(
	ctx context.Context,
	t *domain.Task,
	ownerCount, convCount int64,
) error {
	awarded := false

	for _, threshold := range a.thresholds {
		if ownerCount >= threshold {
			isNew, err := a.award(ctx, t, domain.ScopeOwner, t.OwnerID, threshold)
			if err != nil {
				return err
			}
			awarded = awarded || isNew
		}
		if convCount >= threshold {
			isNew, err := a.award(ctx, t, domain.ScopeConversation, t.ConversationID, threshold)
			if err != nil {
				return err
			}
			awarded = awarded || isNew
		}
	}

	if awarded {
		return a.notifier.Notify(ctx, t.OwnerID, events.Event{Name: events.EventRefreshGoals})
	}

	return nil
}

func (a *SideEffectApplier) award(
	ctx context.Context,
	t *domain.Task,
	scope domain.CounterScope,
	scopeID uuid.UUID,
	threshold int64,
) (bool, error) {
	award, err := domain.NewMilestoneAward(t.OwnerID, scope, scopeID, t.Kind, threshold)
	if err != nil {
		return false, err
	}
	return a.milestones.Award(ctx, award)
}

func (a *SideEffectApplier) notifyCompletion(
	ctx context.Context,
	t *domain.Task,
	artifact *domain.GeneratedArtifact,
) error {
	// Remove the client placeholder first; a stuck loading state is the
	// worst user-visible outcome.
	if err := a.notifier.Notify(ctx, t.OwnerID, events.Event{
		Name:    events.EventVideoLoader,
		Payload: map[string]string{"placeholder_id": t.PlaceholderID},
	}); err != nil {
		return err
	}

	name := events.EventVideoGenerated
	if t.Kind == domain.TaskKindFaceMerge {
		name = events.EventMergeGenerated
	}

	return a.notifier.Notify(ctx, t.OwnerID, events.Event{
		Name:    name,
		Payload: artifact,
	})
}
