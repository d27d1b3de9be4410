package task

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/brocketdesign/chatlamix/internal/provider"
	"github.com/brocketdesign/chatlamix/internal/store"
)

// Reconciler polls providers for tasks parked in the background status and
// drives their outcomes through the completion handler. It is the only
// component that asks a provider about a task after submission; the
// sweeper merely marks candidates for it.
type Reconciler struct {
	tasks      store.TaskStore
	adapters   map[domain.TaskKind]provider.Adapter
	completion *CompletionHandler
	minAge     time.Duration
	logger     *slog.Logger
}

// NewReconciler wires a reconciler over the given adapters. minAge guards
// against polling tasks whose webhook may still be in flight.
func NewReconciler(
	tasks store.TaskStore,
	adapters []provider.Adapter,
	completion *CompletionHandler,
	minAge time.Duration,
	log *slog.Logger,
) *Reconciler {
	byKind := make(map[domain.TaskKind]provider.Adapter, len(adapters))
	for _, a := range adapters {
		byKind[a.Kind()] = a
	}
	return &Reconciler{
		tasks:      tasks,
		adapters:   byKind,
		completion: completion,
		minAge:     minAge,
		logger:     log.With("component", "reconciler"),
	}
}

// Run executes one reconciliation pass. Individual task failures are
// logged and skipped so one wedged task cannot starve the rest.
func (r *Reconciler) Run(ctx context.Context) {
	for _, kind := range domain.Kinds() {
		adapter, ok := r.adapters[kind]
		if !ok {
			continue
		}

		incomplete, err := r.tasks.FindIncomplete(ctx, kind)
		if err != nil {
			r.logger.Error("failed to list incomplete tasks", "kind", kind, "error", err)
			continue
		}

		cutoff := time.Now().UTC().Add(-r.minAge)
		for _, t := range incomplete {
			if t.Status != domain.TaskStatusBackground || t.UpdatedAt.After(cutoff) {
				continue
			}
			r.reconcile(ctx, adapter, t)
		}
	}
}

func (r *Reconciler) reconcile(ctx context.Context, adapter provider.Adapter, t *domain.Task) {
	log := r.logger.With("task_id", t.TaskID, "placeholder_id", t.PlaceholderID, "kind", t.Kind)

	outcome, err := adapter.Poll(ctx, t.TaskID)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrOutcomePending):
			// Still running upstream. Leave the task for the next pass.
		case errors.Is(err, provider.ErrPollUnsupported):
			// Sync providers have no poll surface. The task can only be
			// stuck from a crash mid-submission; fail it so the client
			// placeholder clears.
			r.signal(ctx, log, Signal{
				TaskID:        t.TaskID,
				PlaceholderID: t.PlaceholderID,
				FailureReason: "task interrupted before completion",
			})
		default:
			log.Warn("provider poll failed", "error", err)
		}
		return
	}

	r.signal(ctx, log, Signal{
		TaskID:        t.TaskID,
		PlaceholderID: t.PlaceholderID,
		Result:        outcome.Result,
		FailureReason: outcome.FailureReason,
	})
}

func (r *Reconciler) signal(ctx context.Context, log *slog.Logger, sig Signal) {
	if _, err := r.completion.HandleCompletion(ctx, sig); err != nil {
		log.Error("reconciliation completion failed", "error", err)
		return
	}
	log.Info("background task reconciled")
}
