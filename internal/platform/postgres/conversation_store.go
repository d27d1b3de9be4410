package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/brocketdesign/chatlamix/internal/platform/logger"
	"github.com/brocketdesign/chatlamix/internal/store"
	"github.com/google/uuid"
)

// PostgresConversationStore implements the store.ConversationStore
// interface using PostgreSQL.
type PostgresConversationStore struct {
	db store.DBTX
}

// Ensure PostgresConversationStore implements store.ConversationStore.
var _ store.ConversationStore = (*PostgresConversationStore)(nil)

// NewPostgresConversationStore creates a new PostgresConversationStore.
func NewPostgresConversationStore(db store.DBTX) *PostgresConversationStore {
	return &PostgresConversationStore{db: db}
}

// WithTx implements store.ConversationStore.WithTx.
func (s *PostgresConversationStore) WithTx(tx *sql.Tx) store.ConversationStore {
	return &PostgresConversationStore{db: tx}
}

// AppendMessage implements store.ConversationStore.AppendMessage. The
// unique index on artifact_id plus ON CONFLICT DO NOTHING makes the
// append race-safe: concurrent finalizations insert at most one row, and
// the rows-affected count tells each caller whether it was the one.
func (s *PostgresConversationStore) AppendMessage(ctx context.Context, msg *domain.ConversationMessage) (bool, error) {
	log := logger.FromContext(ctx)

	if err := msg.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO conversation_messages (id, conversation_id, owner_id, artifact_id,
			kind, body, media_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (artifact_id) DO NOTHING`

	result, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.ConversationID,
		msg.OwnerID,
		msg.ArtifactID,
		msg.Kind,
		msg.Body,
		msg.MediaURL,
		msg.CreatedAt,
	)
	if err != nil {
		log.Error("failed to append conversation message",
			"artifact_id", msg.ArtifactID,
			"conversation_id", msg.ConversationID,
			"error", err)
		return false, MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// IncrementCounter implements store.ConversationStore.IncrementCounter
// with an upsert, so the first generation for a scope creates its row.
func (s *PostgresConversationStore) IncrementCounter(
	ctx context.Context,
	scope domain.CounterScope,
	scopeID uuid.UUID,
	kind domain.TaskKind,
) (int64, error) {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO generation_counters (scope, scope_id, kind, count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (scope, scope_id, kind)
		DO UPDATE SET count = generation_counters.count + 1
		RETURNING count`

	var count int64
	err := s.db.QueryRowContext(ctx, query, scope, scopeID, kind).Scan(&count)
	if err != nil {
		log.Error("failed to increment generation counter",
			"scope", scope,
			"scope_id", scopeID,
			"kind", kind,
			"error", err)
		return 0, MapError(err)
	}

	return count, nil
}

// PostgresMilestoneStore implements the store.MilestoneStore interface
// using PostgreSQL.
type PostgresMilestoneStore struct {
	db store.DBTX
}

// Ensure PostgresMilestoneStore implements store.MilestoneStore.
var _ store.MilestoneStore = (*PostgresMilestoneStore)(nil)

// NewPostgresMilestoneStore creates a new PostgresMilestoneStore.
func NewPostgresMilestoneStore(db store.DBTX) *PostgresMilestoneStore {
	return &PostgresMilestoneStore{db: db}
}

// WithTx implements store.MilestoneStore.WithTx.
func (s *PostgresMilestoneStore) WithTx(tx *sql.Tx) store.MilestoneStore {
	return &PostgresMilestoneStore{db: tx}
}

// Award implements store.MilestoneStore.Award. The award tuple is unique,
// so replays after retries insert nothing and report false.
func (s *PostgresMilestoneStore) Award(ctx context.Context, award *domain.MilestoneAward) (bool, error) {
	log := logger.FromContext(ctx)

	if err := award.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO milestone_awards (id, owner_id, scope, scope_id, kind, threshold, awarded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (owner_id, scope, scope_id, kind, threshold) DO NOTHING`

	result, err := s.db.ExecContext(ctx, query,
		award.ID,
		award.OwnerID,
		award.Scope,
		award.ScopeID,
		award.Kind,
		award.Threshold,
		award.AwardedAt,
	)
	if err != nil {
		log.Error("failed to record milestone award",
			"owner_id", award.OwnerID,
			"threshold", award.Threshold,
			"error", err)
		return false, MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
