package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/brocketdesign/chatlamix/internal/store"
	"github.com/google/uuid"
)

// MockArtifactStore implements store.ArtifactStore for testing. Its
// in-memory default enforces both uniqueness rules of the real table:
// one artifact per task ID, one per (owner, source, media URL) triple.
type MockArtifactStore struct {
	// Function fields for customizable behavior
	CreateFn       func(ctx context.Context, artifact *domain.GeneratedArtifact) error
	GetByTaskIDFn  func(ctx context.Context, taskID string) (*domain.GeneratedArtifact, error)
	GetByContentFn func(ctx context.Context, ownerID, sourceArtifactID uuid.UUID, mediaURL string) (*domain.GeneratedArtifact, error)

	mu        sync.Mutex
	artifacts []*domain.GeneratedArtifact
}

// NewMockArtifactStore creates a new mock store with an empty in-memory table.
func NewMockArtifactStore() *MockArtifactStore {
	return &MockArtifactStore{}
}

// Create implements the ArtifactStore interface.
func (m *MockArtifactStore) Create(ctx context.Context, artifact *domain.GeneratedArtifact) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, artifact)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.artifacts {
		if a.TaskID == artifact.TaskID {
			return store.ErrDuplicateArtifact
		}
		if a.OwnerID == artifact.OwnerID &&
			a.SourceArtifactID == artifact.SourceArtifactID &&
			a.MediaURL == artifact.MediaURL {
			return store.ErrDuplicateArtifact
		}
	}

	clone := *artifact
	m.artifacts = append(m.artifacts, &clone)
	return nil
}

// GetByTaskID implements the ArtifactStore interface.
func (m *MockArtifactStore) GetByTaskID(ctx context.Context, taskID string) (*domain.GeneratedArtifact, error) {
	if m.GetByTaskIDFn != nil {
		return m.GetByTaskIDFn(ctx, taskID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.artifacts {
		if a.TaskID == taskID {
			clone := *a
			return &clone, nil
		}
	}
	return nil, store.ErrArtifactNotFound
}

// GetByContent implements the ArtifactStore interface.
func (m *MockArtifactStore) GetByContent(
	ctx context.Context,
	ownerID uuid.UUID,
	sourceArtifactID uuid.UUID,
	mediaURL string,
) (*domain.GeneratedArtifact, error) {
	if m.GetByContentFn != nil {
		return m.GetByContentFn(ctx, ownerID, sourceArtifactID, mediaURL)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.artifacts {
		if a.OwnerID == ownerID && a.SourceArtifactID == sourceArtifactID && a.MediaURL == mediaURL {
			clone := *a
			return &clone, nil
		}
	}
	return nil, store.ErrArtifactNotFound
}

// WithTx implements the ArtifactStore interface.
func (m *MockArtifactStore) WithTx(tx *sql.Tx) store.ArtifactStore {
	return m
}

// Count returns the number of stored artifacts.
func (m *MockArtifactStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.artifacts)
}
