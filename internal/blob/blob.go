// Package blob defines the boundary to the external object store holding
// generated media. The orchestrator only needs to put bytes somewhere
// durable and get a public URL back; everything else about the object
// store is a collaborator's concern.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Store uploads media produced by sync-mode providers.
type Store interface {
	// Upload writes the object under key and returns its public URL.
	Upload(ctx context.Context, key, contentType string, data io.Reader) (string, error)
}

// HTTPStore is a Store backed by a plain HTTP object endpoint (a CDN
// origin or storage gateway accepting PUTs).
type HTTPStore struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPStore creates a Store putting objects under the given base URL.
func NewHTTPStore(baseURL string, client *http.Client, logger *slog.Logger) *HTTPStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger.With("component", "blob_store"),
	}
}

// Upload implements Store.
func (s *HTTPStore) Upload(ctx context.Context, key, contentType string, data io.Reader) (string, error) {
	body, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("failed to read upload body: %w", err)
	}

	objectURL := s.baseURL + "/" + key

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, objectURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("blob upload failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Warn("failed to close upload response body", "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("blob upload rejected with status %d", resp.StatusCode)
	}

	s.logger.Debug("uploaded object", "key", key, "bytes", len(body))

	return objectURL, nil
}
