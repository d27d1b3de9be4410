package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/brocketdesign/chatlamix/internal/store"
)

// MockTaskStore implements store.TaskStore for testing.
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn           func(ctx context.Context, task *domain.Task) error
	GetByCorrelationFn func(ctx context.Context, taskID, placeholderID string) (*domain.Task, error)
	UpdateStatusFn     func(ctx context.Context, sel store.TaskSelector, status domain.TaskStatus, reason string) error
	CompleteOnceFn     func(ctx context.Context, sel store.TaskSelector, result *domain.TaskResult) (bool, error)
	FindIncompleteFn   func(ctx context.Context, kind domain.TaskKind) ([]*domain.Task, error)

	mu    sync.Mutex
	tasks []*domain.Task
}

// NewMockTaskStore creates a new mock store with an empty in-memory table.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{}
}

// Seed inserts tasks directly, bypassing Create semantics.
func (m *MockTaskStore) Seed(tasks ...*domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, tasks...)
}

// Create implements the TaskStore interface.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tasks {
		if task.TaskID != "" && t.TaskID == task.TaskID {
			return store.ErrDuplicateTask
		}
	}

	clone := *task
	m.tasks = append(m.tasks, &clone)
	return nil
}

// GetByCorrelation implements the TaskStore interface.
func (m *MockTaskStore) GetByCorrelation(ctx context.Context, taskID, placeholderID string) (*domain.Task, error) {
	if m.GetByCorrelationFn != nil {
		return m.GetByCorrelationFn(ctx, taskID, placeholderID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.find(store.TaskSelector{TaskID: taskID, PlaceholderID: placeholderID})
	if t == nil {
		return nil, store.ErrTaskNotFound
	}

	clone := *t
	return &clone, nil
}

// UpdateStatus implements the TaskStore interface.
func (m *MockTaskStore) UpdateStatus(ctx context.Context, sel store.TaskSelector, status domain.TaskStatus, reason string) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, sel, status, reason)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.find(sel)
	if t == nil {
		return store.ErrTaskNotFound
	}
	if t.Status.Terminal() {
		return nil
	}

	t.Status = status
	t.FailureReason = reason
	return nil
}

// CompleteOnce implements the TaskStore interface.
func (m *MockTaskStore) CompleteOnce(ctx context.Context, sel store.TaskSelector, result *domain.TaskResult) (bool, error) {
	if m.CompleteOnceFn != nil {
		return m.CompleteOnceFn(ctx, sel, result)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.find(sel)
	if t == nil {
		return false, store.ErrTaskNotFound
	}
	if t.Status == domain.TaskStatusCompleted {
		return false, nil
	}

	t.Status = domain.TaskStatusCompleted
	t.Result = result
	t.FailureReason = ""
	return true, nil
}

// FindIncomplete implements the TaskStore interface.
func (m *MockTaskStore) FindIncomplete(ctx context.Context, kind domain.TaskKind) ([]*domain.Task, error) {
	if m.FindIncompleteFn != nil {
		return m.FindIncompleteFn(ctx, kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Task
	for _, t := range m.tasks {
		if t.Kind == kind && !t.Status.Terminal() {
			clone := *t
			out = append(out, &clone)
		}
	}
	return out, nil
}

// WithTx implements the TaskStore interface. The mock has no transaction
// state, so it returns itself.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

// Get returns the stored task matching the selector, or nil.
func (m *MockTaskStore) Get(sel store.TaskSelector) *domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.find(sel)
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}

func (m *MockTaskStore) find(sel store.TaskSelector) *domain.Task {
	for _, t := range m.tasks {
		if sel.TaskID != "" && t.TaskID == sel.TaskID {
			return t
		}
		if sel.PlaceholderID != "" && t.PlaceholderID == sel.PlaceholderID {
			return t
		}
	}
	return nil
}
