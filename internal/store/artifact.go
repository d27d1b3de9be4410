package store

import (
	"context"
	"database/sql"

	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/google/uuid"
)

// ArtifactStore defines the interface for generated artifact persistence.
type ArtifactStore interface {
	// Create saves a new artifact.
	// Returns ErrDuplicateArtifact if an artifact already exists for the
	// same task ID or the same (owner, source artifact, media URL) triple.
	Create(ctx context.Context, artifact *domain.GeneratedArtifact) error

	// GetByTaskID retrieves the artifact produced by the given task.
	// Returns ErrArtifactNotFound if none exists.
	GetByTaskID(ctx context.Context, taskID string) (*domain.GeneratedArtifact, error)

	// GetByContent retrieves the artifact matching the content uniqueness
	// triple. Returns ErrArtifactNotFound if none exists.
	GetByContent(
		ctx context.Context,
		ownerID uuid.UUID,
		sourceArtifactID uuid.UUID,
		mediaURL string,
	) (*domain.GeneratedArtifact, error)

	// WithTx returns a new ArtifactStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ArtifactStore
}
