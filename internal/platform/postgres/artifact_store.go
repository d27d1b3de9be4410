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

const artifactColumns = `id, task_id, kind, owner_id, conversation_id,
	source_artifact_id, media_url, duration_seconds, size_bytes, created_at`

// PostgresArtifactStore implements the store.ArtifactStore interface using
// PostgreSQL.
type PostgresArtifactStore struct {
	db store.DBTX
}

// Ensure PostgresArtifactStore implements store.ArtifactStore.
var _ store.ArtifactStore = (*PostgresArtifactStore)(nil)

// NewPostgresArtifactStore creates a new PostgresArtifactStore.
func NewPostgresArtifactStore(db store.DBTX) *PostgresArtifactStore {
	return &PostgresArtifactStore{db: db}
}

// WithTx implements store.ArtifactStore.WithTx.
func (s *PostgresArtifactStore) WithTx(tx *sql.Tx) store.ArtifactStore {
	return &PostgresArtifactStore{db: tx}
}

// Create implements store.ArtifactStore.Create. Both unique constraints
// (task_id, and the owner/source/media triple) surface as
// store.ErrDuplicateArtifact.
func (s *PostgresArtifactStore) Create(ctx context.Context, artifact *domain.GeneratedArtifact) error {
	log := logger.FromContext(ctx)

	if err := artifact.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO generated_artifacts (id, task_id, kind, owner_id, conversation_id,
			source_artifact_id, media_url, duration_seconds, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.db.ExecContext(ctx, query,
		artifact.ID,
		artifact.TaskID,
		artifact.Kind,
		artifact.OwnerID,
		artifact.ConversationID,
		artifact.SourceArtifactID,
		artifact.MediaURL,
		artifact.DurationSeconds,
		artifact.SizeBytes,
		artifact.CreatedAt,
	)
	if err != nil {
		if !IsUniqueViolation(err) {
			log.Error("failed to create artifact",
				"task_id", artifact.TaskID,
				"error", err)
		}
		return mapEntityError(err, store.ErrArtifactNotFound, store.ErrDuplicateArtifact)
	}

	return nil
}

// GetByTaskID implements store.ArtifactStore.GetByTaskID.
func (s *PostgresArtifactStore) GetByTaskID(ctx context.Context, taskID string) (*domain.GeneratedArtifact, error) {
	query := `SELECT ` + artifactColumns + `
		FROM generated_artifacts
		WHERE task_id = $1`

	artifact, err := scanArtifact(s.db.QueryRowContext(ctx, query, taskID))
	if err != nil {
		return nil, mapEntityError(err, store.ErrArtifactNotFound, store.ErrDuplicateArtifact)
	}
	return artifact, nil
}

// GetByContent implements store.ArtifactStore.GetByContent.
func (s *PostgresArtifactStore) GetByContent(
	ctx context.Context,
	ownerID uuid.UUID,
	sourceArtifactID uuid.UUID,
	mediaURL string,
) (*domain.GeneratedArtifact, error) {
	query := `SELECT ` + artifactColumns + `
		FROM generated_artifacts
		WHERE owner_id = $1 AND source_artifact_id = $2 AND media_url = $3`

	artifact, err := scanArtifact(s.db.QueryRowContext(ctx, query, ownerID, sourceArtifactID, mediaURL))
	if err != nil {
		return nil, mapEntityError(err, store.ErrArtifactNotFound, store.ErrDuplicateArtifact)
	}
	return artifact, nil
}

func scanArtifact(row rowScanner) (*domain.GeneratedArtifact, error) {
	var artifact domain.GeneratedArtifact
	err := row.Scan(
		&artifact.ID,
		&artifact.TaskID,
		&artifact.Kind,
		&artifact.OwnerID,
		&artifact.ConversationID,
		&artifact.SourceArtifactID,
		&artifact.MediaURL,
		&artifact.DurationSeconds,
		&artifact.SizeBytes,
		&artifact.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}
