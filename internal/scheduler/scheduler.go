// Package scheduler owns the periodic background jobs of the process. It
// replaces any free-floating global job table with one explicit object:
// a map from job name to a cancellable handle, constructed once at
// startup and passed by reference to anything that needs to introspect
// or stop jobs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Common scheduler errors.
var (
	ErrJobExists = errors.New("job already registered")
	ErrStopped   = errors.New("scheduler is stopped")
)

// JobFunc is one run of a periodic job. The context is cancelled when the
// job or the whole scheduler stops.
type JobFunc func(ctx context.Context)

// Handle is the cancellable reference to one registered job.
type Handle struct {
	name     string
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
	owner    *Scheduler
}

// Name returns the job's registered name.
func (h *Handle) Name() string { return h.name }

// Interval returns the job's tick interval.
func (h *Handle) Interval() time.Duration { return h.interval }

// Stop cancels the job and waits for any in-flight run to return.
// Stopping an already stopped job is a no-op.
func (h *Handle) Stop() {
	h.stopOnce.Do(func() {
		h.cancel()
		<-h.done
		h.owner.remove(h.name)
	})
}

// Scheduler runs named periodic jobs.
type Scheduler struct {
	mu      sync.Mutex
	jobs    map[string]*Handle
	logger  *slog.Logger
	baseCtx context.Context
	cancel  context.CancelFunc
	stopped bool
}

// New creates an empty Scheduler.
func New(logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:    make(map[string]*Handle),
		logger:  logger.With("component", "scheduler"),
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Register adds a named periodic job and starts its ticker goroutine.
// The first run happens one interval after registration, not immediately.
// Returns ErrJobExists if the name is taken and ErrStopped after StopAll.
func (s *Scheduler) Register(name string, interval time.Duration, fn JobFunc) (*Handle, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("job %q: interval must be positive", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil, ErrStopped
	}
	if _, ok := s.jobs[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrJobExists, name)
	}

	ctx, cancel := context.WithCancel(s.baseCtx)
	h := &Handle{
		name:     name,
		interval: interval,
		cancel:   cancel,
		done:     make(chan struct{}),
		owner:    s,
	}
	s.jobs[name] = h

	go s.run(ctx, h, fn)

	s.logger.Info("job registered", "job", name, "interval", interval)

	return h, nil
}

// Jobs returns the names of the currently registered jobs, sorted.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StopAll stops every job and rejects further registrations.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	s.stopped = true
	handles := make([]*Handle, 0, len(s.jobs))
	for _, h := range s.jobs {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	s.cancel()
	for _, h := range handles {
		h.Stop()
	}

	s.logger.Info("scheduler stopped", "jobs", len(handles))
}

func (s *Scheduler) run(ctx context.Context, h *Handle, fn JobFunc) {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.logger.Debug("job tick", "job", h.name)
			fn(ctx)
		}
	}
}

func (s *Scheduler) remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, name)
}
