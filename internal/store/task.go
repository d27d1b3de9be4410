package store

import (
	"context"
	"database/sql"

	"github.com/brocketdesign/chatlamix/internal/domain"
)

// TaskSelector identifies a task by either of its correlation keys.
// TaskID takes precedence; PlaceholderID covers signals from providers
// that only echo back the client placeholder.
type TaskSelector struct {
	TaskID        string
	PlaceholderID string
}

// TaskStore defines the interface for generation task persistence.
// It is the single source of truth for task lifecycle state; no method
// ever deletes a task. Retention of stale rows is a separate concern.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrDuplicateTask if a task with the same correlation ID exists.
	Create(ctx context.Context, task *domain.Task) error

	// GetByCorrelation retrieves the task matching either correlation key.
	// Returns ErrTaskNotFound if no task matches.
	GetByCorrelation(ctx context.Context, taskID, placeholderID string) (*domain.Task, error)

	// UpdateStatus moves the selected task to a non-completed status.
	// Tasks already in a terminal state are left untouched; the update is
	// a no-op in that case. Returns ErrTaskNotFound if no task matches
	// the selector at all.
	UpdateStatus(ctx context.Context, sel TaskSelector, status domain.TaskStatus, reason string) error

	// CompleteOnce conditionally transitions the selected task to
	// completed, recording the result. The transition applies only if the
	// current status is not already completed; the returned bool reports
	// whether this call performed the transition. This is the only path
	// that may set the completed status, which makes finalization
	// idempotent under duplicate completion signals.
	CompleteOnce(ctx context.Context, sel TaskSelector, result *domain.TaskResult) (bool, error)

	// FindIncomplete returns every task of the given kind whose status is
	// not terminal, oldest first. Used by the recovery sweeper and the
	// reconciliation job.
	FindIncomplete(ctx context.Context, kind domain.TaskKind) ([]*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}
