package store

import (
	"context"
	"database/sql"

	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/google/uuid"
)

// ConversationStore defines the interface for conversation mutations
// performed during task finalization: the synthetic transcript message
// and the aggregate generation counters.
type ConversationStore interface {
	// AppendMessage appends the synthetic message unless one already
	// references the same artifact ID. The returned bool reports whether
	// this call appended a new message (false means a message for the
	// artifact was already present and nothing changed).
	AppendMessage(ctx context.Context, msg *domain.ConversationMessage) (bool, error)

	// IncrementCounter atomically increments the generation counter for
	// the given scope and kind, returning the new count.
	IncrementCounter(
		ctx context.Context,
		scope domain.CounterScope,
		scopeID uuid.UUID,
		kind domain.TaskKind,
	) (int64, error)

	// WithTx returns a new ConversationStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ConversationStore
}

// MilestoneStore defines the interface for milestone award persistence.
type MilestoneStore interface {
	// Award records the milestone unless the same (owner, scope, scope ID,
	// kind, threshold) tuple was already awarded. The returned bool
	// reports whether this call created a new award.
	Award(ctx context.Context, award *domain.MilestoneAward) (bool, error)

	// WithTx returns a new MilestoneStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) MilestoneStore
}
