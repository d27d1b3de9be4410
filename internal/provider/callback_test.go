package provider

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestCallbackSigner(t *testing.T) {
	t.Parallel()

	t.Run("round-trips claims through a signed URL", func(t *testing.T) {
		signer := NewCallbackSigner(testSecret, time.Hour, "https://app.example.com/")

		url, err := signer.SignedURL("task-1", "ph-1")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(url, "https://app.example.com/webhooks/generation/"))

		token := strings.TrimPrefix(url, "https://app.example.com/webhooks/generation/")
		claims, err := signer.Verify(token)

		require.NoError(t, err)
		assert.Equal(t, "task-1", claims.Subject)
		assert.Equal(t, "ph-1", claims.PlaceholderID)
	})

	t.Run("rejects a token signed with a different secret", func(t *testing.T) {
		signer := NewCallbackSigner(testSecret, time.Hour, "https://app.example.com")
		other := NewCallbackSigner("ffffffffffffffffffffffffffffffff", time.Hour, "https://app.example.com")

		url, err := other.SignedURL("task-1", "ph-1")
		require.NoError(t, err)
		token := url[strings.LastIndex(url, "/")+1:]

		_, err = signer.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidCallbackToken)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		signer := NewCallbackSigner(testSecret, -time.Minute, "https://app.example.com")

		url, err := signer.SignedURL("task-1", "ph-1")
		require.NoError(t, err)
		token := url[strings.LastIndex(url, "/")+1:]

		_, err = signer.Verify(token)
		assert.ErrorIs(t, err, ErrExpiredCallbackToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		signer := NewCallbackSigner(testSecret, time.Hour, "https://app.example.com")

		_, err := signer.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidCallbackToken)
	})
}
