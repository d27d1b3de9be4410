package task

import (
	"context"
	"fmt"
	"log/slog"
)

// BestEffort runs side effects that must never fail their parent
// operation: milestone evaluation and realtime notifications. Errors and
// panics are logged and swallowed. The optional OnAttempt hook observes
// every attempt and its outcome, so tests can assert an effect was
// attempted without asserting it succeeded.
type BestEffort struct {
	Logger    *slog.Logger
	OnAttempt func(name string, err error)
}

// Run executes fn, converting any error or panic into a log entry.
func (b *BestEffort) Run(ctx context.Context, name string, fn func(ctx context.Context) error) {
	err := b.attempt(ctx, fn)

	if err != nil {
		b.Logger.Warn("best-effort side effect failed",
			"effect", name,
			"error", err)
	}

	if b.OnAttempt != nil {
		b.OnAttempt(name, err)
	}
}

func (b *BestEffort) attempt(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(ctx)
}
