package provider

import (
	"strings"
)

// DefaultMaxPromptRunes bounds prompt length when no explicit limit is
// configured.
const DefaultMaxPromptRunes = 800

// NormalizePrompt enforces the prompt contract every adapter applies
// before submission: surrounding whitespace is stripped, an oversized
// prompt is truncated to maxRunes (rune-safe, never mid-character), and
// input left empty by trimming or truncation falls back to the provided
// default. Malformed input is corrected deterministically, never
// rejected.
func NormalizePrompt(prompt string, maxRunes int, fallback string) string {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxPromptRunes
	}

	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return fallback
	}

	runes := []rune(trimmed)
	if len(runes) > maxRunes {
		trimmed = strings.TrimSpace(string(runes[:maxRunes]))
		if trimmed == "" {
			return fallback
		}
	}

	return trimmed
}
