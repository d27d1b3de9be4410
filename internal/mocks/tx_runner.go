package mocks

import (
	"context"

	"github.com/brocketdesign/chatlamix/internal/store"
)

// MockTxRunner implements store.TxRunner for testing. The default runs
// the function with a nil transaction, which works because the mock
// stores ignore WithTx. Err, when set, is returned without invoking the
// function, simulating a transaction that failed to commit.
type MockTxRunner struct {
	RunInTransactionFn func(ctx context.Context, fn store.TxFn) error
	Err                error

	Calls int
}

// RunInTransaction implements the TxRunner interface.
func (m *MockTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	m.Calls++

	if m.RunInTransactionFn != nil {
		return m.RunInTransactionFn(ctx, fn)
	}
	if m.Err != nil {
		return m.Err
	}
	return fn(ctx, nil)
}
