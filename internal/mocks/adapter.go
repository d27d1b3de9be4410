package mocks

import (
	"context"
	"sync"

	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/brocketdesign/chatlamix/internal/provider"
)

// MockAdapter implements provider.Adapter for testing.
type MockAdapter struct {
	// KindValue is the task kind this adapter claims to serve.
	KindValue domain.TaskKind

	// Function fields for customizable behavior
	SubmitFn func(ctx context.Context, req provider.SubmitRequest) (*provider.SubmitResult, error)
	PollFn   func(ctx context.Context, taskID string) (*provider.Outcome, error)

	mu          sync.Mutex
	submitCalls []provider.SubmitRequest
	pollCalls   []string
}

// Kind implements the Adapter interface.
func (m *MockAdapter) Kind() domain.TaskKind {
	return m.KindValue
}

// Submit implements the Adapter interface.
func (m *MockAdapter) Submit(ctx context.Context, req provider.SubmitRequest) (*provider.SubmitResult, error) {
	m.mu.Lock()
	m.submitCalls = append(m.submitCalls, req)
	m.mu.Unlock()

	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, req)
	}
	return &provider.SubmitResult{Mode: provider.ModeAsync, TaskID: "mock-task"}, nil
}

// Poll implements the Adapter interface.
func (m *MockAdapter) Poll(ctx context.Context, taskID string) (*provider.Outcome, error) {
	m.mu.Lock()
	m.pollCalls = append(m.pollCalls, taskID)
	m.mu.Unlock()

	if m.PollFn != nil {
		return m.PollFn(ctx, taskID)
	}
	return nil, provider.ErrOutcomePending
}

// SubmitCalls returns a copy of the recorded submit requests.
func (m *MockAdapter) SubmitCalls() []provider.SubmitRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]provider.SubmitRequest(nil), m.submitCalls...)
}

// PollCalls returns a copy of the recorded poll task IDs.
func (m *MockAdapter) PollCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.pollCalls...)
}
