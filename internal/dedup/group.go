// Package dedup collapses concurrent identical generation requests into a
// single in-flight upstream call, keyed by a content fingerprint.
//
// The call map is local to one process. For a multi-instance deployment
// this would need to become a distributed compare-and-swap lock (for
// example a row in the durable store with a TTL and owner token); the
// in-memory map is an explicit single-instance limitation, not an
// oversight.
package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// call is one in-flight operation. Waiters block on done and then read
// val/err; both are written exactly once before done is closed.
type call struct {
	done chan struct{}
	val  any
	err  error
}

// Group collapses concurrent calls sharing a key into one execution.
// The zero value is not usable; construct with NewGroup.
type Group struct {
	mu     sync.Mutex
	calls  map[string]*call
	logger *slog.Logger
}

// NewGroup creates an empty Group.
func NewGroup(logger *slog.Logger) *Group {
	return &Group{
		calls:  make(map[string]*call),
		logger: logger.With("component", "dedup_group"),
	}
}

// Do executes fn under the given key, guaranteeing that for any number of
// concurrent callers sharing the key, fn runs at most once at a time and
// all waiters observe the leader's outcome.
//
// If the leader's call fails, a waiter does not inherit the stale failure:
// it falls through once and acquires a fresh slot (becoming the new
// leader) before giving up. The map entry is removed unconditionally when
// a call settles, success or failure, so no entry can leak past its
// operation.
func (g *Group) Do(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	for attempt := 0; ; attempt++ {
		g.mu.Lock()
		if c, ok := g.calls[key]; ok {
			g.mu.Unlock()

			select {
			case <-c.done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}

			if c.err == nil {
				g.logger.Debug("joined in-flight operation", "key", key)
				return c.val, nil
			}

			// The leader failed. Retry once with a fresh slot rather than
			// propagating a failure this caller never caused.
			if attempt == 0 {
				g.logger.Debug("in-flight operation failed, retrying once", "key", key)
				continue
			}
			return nil, c.err
		}

		c := &call{done: make(chan struct{})}
		g.calls[key] = c
		g.mu.Unlock()

		g.run(ctx, key, c, fn)

		return c.val, c.err
	}
}

// run executes fn as the leader for key. Removal of the map entry happens
// in a defer so an operation that panics still cannot leak its slot.
func (g *Group) run(ctx context.Context, key string, c *call, fn func(ctx context.Context) (any, error)) {
	defer func() {
		if p := recover(); p != nil {
			c.err = fmt.Errorf("in-flight operation panicked: %v", p)
			g.logger.Error("in-flight operation panicked", "key", key, "panic", p)
		}
		g.mu.Lock()
		delete(g.calls, key)
		g.mu.Unlock()
		close(c.done)
	}()

	c.val, c.err = fn(ctx)
}

// InFlight reports how many operations are currently running. Exposed for
// observability and tests.
func (g *Group) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}
