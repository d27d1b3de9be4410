package scheduler

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() *Scheduler {
	return New(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func TestScheduler(t *testing.T) {
	t.Parallel()

	t.Run("runs a registered job on its interval", func(t *testing.T) {
		s := newTestScheduler()
		defer s.StopAll()

		var runs atomic.Int64
		_, err := s.Register("tick", 10*time.Millisecond, func(ctx context.Context) {
			runs.Add(1)
		})
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			return runs.Load() >= 2
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("rejects duplicate names", func(t *testing.T) {
		s := newTestScheduler()
		defer s.StopAll()

		_, err := s.Register("reconcile", time.Minute, func(ctx context.Context) {})
		require.NoError(t, err)

		_, err = s.Register("reconcile", time.Minute, func(ctx context.Context) {})
		assert.ErrorIs(t, err, ErrJobExists)
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		s := newTestScheduler()
		defer s.StopAll()

		_, err := s.Register("bad", 0, func(ctx context.Context) {})
		assert.Error(t, err)
	})

	t.Run("lists registered jobs sorted", func(t *testing.T) {
		s := newTestScheduler()
		defer s.StopAll()

		_, err := s.Register("b-job", time.Minute, func(ctx context.Context) {})
		require.NoError(t, err)
		_, err = s.Register("a-job", time.Minute, func(ctx context.Context) {})
		require.NoError(t, err)

		assert.Equal(t, []string{"a-job", "b-job"}, s.Jobs())
	})

	t.Run("stop removes the job and halts its runs", func(t *testing.T) {
		s := newTestScheduler()
		defer s.StopAll()

		var runs atomic.Int64
		h, err := s.Register("tick", 10*time.Millisecond, func(ctx context.Context) {
			runs.Add(1)
		})
		require.NoError(t, err)

		h.Stop()
		h.Stop() // idempotent
		assert.Empty(t, s.Jobs())

		settled := runs.Load()
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, settled, runs.Load())
	})

	t.Run("rejects registration after StopAll", func(t *testing.T) {
		s := newTestScheduler()
		s.StopAll()

		_, err := s.Register("late", time.Minute, func(ctx context.Context) {})
		assert.ErrorIs(t, err, ErrStopped)
	})
}
