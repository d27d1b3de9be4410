package mocks

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/brocketdesign/chatlamix/internal/store"
	"github.com/google/uuid"
)

// MockConversationStore implements store.ConversationStore for testing.
// The default AppendMessage deduplicates on artifact ID the way the real
// table's unique constraint does.
type MockConversationStore struct {
	// Function fields for customizable behavior
	AppendMessageFn    func(ctx context.Context, msg *domain.ConversationMessage) (bool, error)
	IncrementCounterFn func(ctx context.Context, scope domain.CounterScope, scopeID uuid.UUID, kind domain.TaskKind) (int64, error)

	mu       sync.Mutex
	messages []*domain.ConversationMessage
	counters map[string]int64
}

// NewMockConversationStore creates a new mock store with empty tables.
func NewMockConversationStore() *MockConversationStore {
	return &MockConversationStore{counters: make(map[string]int64)}
}

// AppendMessage implements the ConversationStore interface.
func (m *MockConversationStore) AppendMessage(ctx context.Context, msg *domain.ConversationMessage) (bool, error) {
	if m.AppendMessageFn != nil {
		return m.AppendMessageFn(ctx, msg)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.messages {
		if existing.ArtifactID == msg.ArtifactID {
			return false, nil
		}
	}

	clone := *msg
	m.messages = append(m.messages, &clone)
	return true, nil
}

// IncrementCounter implements the ConversationStore interface.
func (m *MockConversationStore) IncrementCounter(
	ctx context.Context,
	scope domain.CounterScope,
	scopeID uuid.UUID,
	kind domain.TaskKind,
) (int64, error) {
	if m.IncrementCounterFn != nil {
		return m.IncrementCounterFn(ctx, scope, scopeID, kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := counterKey(scope, scopeID, kind)
	m.counters[key]++
	return m.counters[key], nil
}

// WithTx implements the ConversationStore interface.
func (m *MockConversationStore) WithTx(tx *sql.Tx) store.ConversationStore {
	return m
}

// Messages returns a copy of the stored transcript messages.
func (m *MockConversationStore) Messages() []*domain.ConversationMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.ConversationMessage, 0, len(m.messages))
	for _, msg := range m.messages {
		clone := *msg
		out = append(out, &clone)
	}
	return out
}

// Counter returns the current value for the given scope and kind.
func (m *MockConversationStore) Counter(scope domain.CounterScope, scopeID uuid.UUID, kind domain.TaskKind) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[counterKey(scope, scopeID, kind)]
}

// SetCounter primes a counter value so milestone thresholds can be
// crossed without replaying that many completions.
func (m *MockConversationStore) SetCounter(scope domain.CounterScope, scopeID uuid.UUID, kind domain.TaskKind, value int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[counterKey(scope, scopeID, kind)] = value
}

func counterKey(scope domain.CounterScope, scopeID uuid.UUID, kind domain.TaskKind) string {
	return fmt.Sprintf("%s/%s/%s", scope, scopeID, kind)
}

// MockMilestoneStore implements store.MilestoneStore for testing. The
// default Award deduplicates on the award tuple.
type MockMilestoneStore struct {
	// Function field for customizable behavior
	AwardFn func(ctx context.Context, award *domain.MilestoneAward) (bool, error)

	mu     sync.Mutex
	awards map[string]*domain.MilestoneAward
}

// NewMockMilestoneStore creates a new mock store with an empty table.
func NewMockMilestoneStore() *MockMilestoneStore {
	return &MockMilestoneStore{awards: make(map[string]*domain.MilestoneAward)}
}

// Award implements the MilestoneStore interface.
func (m *MockMilestoneStore) Award(ctx context.Context, award *domain.MilestoneAward) (bool, error) {
	if m.AwardFn != nil {
		return m.AwardFn(ctx, award)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprintf("%s/%s/%s/%s/%d", award.OwnerID, award.Scope, award.ScopeID, award.Kind, award.Threshold)
	if _, exists := m.awards[key]; exists {
		return false, nil
	}

	clone := *award
	m.awards[key] = &clone
	return true, nil
}

// WithTx implements the MilestoneStore interface.
func (m *MockMilestoneStore) WithTx(tx *sql.Tx) store.MilestoneStore {
	return m
}

// Awards returns the number of recorded awards.
func (m *MockMilestoneStore) Awards() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.awards)
}
