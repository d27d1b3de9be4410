package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/brocketdesign/chatlamix/internal/store"
)

// RecoverySweeper moves tasks orphaned by a process restart into the
// background status so the reconciler picks them up. It never contacts
// providers itself and never touches terminal tasks.
type RecoverySweeper struct {
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewRecoverySweeper creates a sweeper over the given task store.
func NewRecoverySweeper(tasks store.TaskStore, log *slog.Logger) *RecoverySweeper {
	return &RecoverySweeper{
		tasks:  tasks,
		logger: log.With("component", "recovery_sweeper"),
	}
}

// Sweep runs one recovery pass across every task kind. It is intended to
// run once at startup, before the server begins accepting requests.
func (s *RecoverySweeper) Sweep(ctx context.Context) error {
	var swept int
	for _, kind := range domain.Kinds() {
		n, err := s.sweepKind(ctx, kind)
		if err != nil {
			return fmt.Errorf("failed to sweep %s tasks: %w", kind, err)
		}
		swept += n
	}

	if swept > 0 {
		s.logger.Info("moved orphaned tasks to background", "count", swept)
	}
	return nil
}

func (s *RecoverySweeper) sweepKind(ctx context.Context, kind domain.TaskKind) (int, error) {
	incomplete, err := s.tasks.FindIncomplete(ctx, kind)
	if err != nil {
		return 0, err
	}

	var swept int
	for _, t := range incomplete {
		// FindIncomplete excludes terminal rows, but the guard costs
		// nothing and the invariant matters.
		if t.Status.Terminal() || t.Status == domain.TaskStatusBackground {
			continue
		}

		sel := store.TaskSelector{TaskID: t.TaskID, PlaceholderID: t.PlaceholderID}
		if err := s.tasks.UpdateStatus(ctx, sel, domain.TaskStatusBackground, ""); err != nil {
			if store.IsNotFoundError(err) {
				continue
			}
			return swept, err
		}

		s.logger.Info("task moved to background",
			"task_id", t.TaskID,
			"placeholder_id", t.PlaceholderID,
			"kind", t.Kind,
			"previous_status", t.Status,
		)
		swept++
	}

	return swept, nil
}
