package provider

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePrompt(t *testing.T) {
	t.Parallel()

	const fallback = "default prompt"

	t.Run("passes a prompt at exactly the limit through unchanged", func(t *testing.T) {
		prompt := strings.Repeat("a", 10)

		assert.Equal(t, prompt, NormalizePrompt(prompt, 10, fallback))
	})

	t.Run("truncates one rune over the limit down to the limit", func(t *testing.T) {
		prompt := strings.Repeat("a", 11)

		assert.Equal(t, strings.Repeat("a", 10), NormalizePrompt(prompt, 10, fallback))
	})

	t.Run("truncation is rune safe", func(t *testing.T) {
		prompt := strings.Repeat("é", 12)

		assert.Equal(t, strings.Repeat("é", 10), NormalizePrompt(prompt, 10, fallback))
	})

	t.Run("strips surrounding whitespace", func(t *testing.T) {
		assert.Equal(t, "hello", NormalizePrompt("  hello \n", 10, fallback))
	})

	t.Run("all-whitespace prompt falls back to the default", func(t *testing.T) {
		assert.Equal(t, fallback, NormalizePrompt("   \t\n ", 10, fallback))
	})

	t.Run("empty prompt falls back to the default", func(t *testing.T) {
		assert.Equal(t, fallback, NormalizePrompt("", 10, fallback))
	})

	t.Run("truncation drops trailing whitespace at the cut", func(t *testing.T) {
		assert.Equal(t, "ab", NormalizePrompt("ab   cd", 4, fallback))
	})

	t.Run("zero limit uses the package default", func(t *testing.T) {
		prompt := strings.Repeat("a", DefaultMaxPromptRunes+5)

		assert.Equal(t,
			strings.Repeat("a", DefaultMaxPromptRunes),
			NormalizePrompt(prompt, 0, fallback))
	})
}
