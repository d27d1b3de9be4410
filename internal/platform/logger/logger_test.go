package logger_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/brocketdesign/chatlamix/internal/platform/logger"
	"github.com/stretchr/testify/assert"
)

func TestFromContext(t *testing.T) {
	t.Parallel()

	t.Run("returns stored logger", func(t *testing.T) {
		stored := slog.New(slog.NewTextHandler(os.Stderr, nil))
		ctx := logger.WithContext(context.Background(), stored)

		assert.Same(t, stored, logger.FromContext(ctx))
	})

	t.Run("falls back to default logger", func(t *testing.T) {
		assert.NotNil(t, logger.FromContext(context.Background()))
	})
}

func TestFromContextOrDefault(t *testing.T) {
	t.Parallel()

	def := slog.New(slog.NewTextHandler(os.Stderr, nil))

	t.Run("prefers context logger", func(t *testing.T) {
		stored := slog.New(slog.NewTextHandler(os.Stderr, nil))
		ctx := logger.WithContext(context.Background(), stored)

		assert.Same(t, stored, logger.FromContextOrDefault(ctx, def))
	})

	t.Run("uses provided default when context is empty", func(t *testing.T) {
		assert.Same(t, def, logger.FromContextOrDefault(context.Background(), def))
	})

	t.Run("uses process default when both are absent", func(t *testing.T) {
		assert.NotNil(t, logger.FromContextOrDefault(context.Background(), nil))
	})
}

func TestSetup(t *testing.T) {
	t.Run("configures logger for each known level", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			assert.NotNil(t, logger.Setup(level))
		}
	})

	t.Run("falls back to info on unknown level", func(t *testing.T) {
		assert.NotNil(t, logger.Setup("extreme"))
	})
}
