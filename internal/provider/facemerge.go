package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/brocketdesign/chatlamix/internal/blob"
	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

const mergeProviderName = "facemerge"

// FaceMerger adapts the synchronous face-merge provider, which returns
// the finished image inline. The adapter uploads the bytes to the blob
// store itself and hands back a result shaped as if a webhook had already
// fired, so sync completions flow through the same finalization path as
// async ones instead of a shortcut.
type FaceMerger struct {
	client         *genai.Client
	model          string
	blobs          blob.Store
	httpClient     *http.Client
	logger         *slog.Logger
	maxPromptRunes int
	defaultPrompt  string
}

// NewFaceMerger creates the sync merge adapter backed by the Gemini image
// model.
func NewFaceMerger(
	ctx context.Context,
	apiKey string,
	model string,
	blobs blob.Store,
	httpClient *http.Client,
	maxPromptRunes int,
	defaultPrompt string,
	logger *slog.Logger,
) (*FaceMerger, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key cannot be empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &FaceMerger{
		client:         client,
		model:          model,
		blobs:          blobs,
		httpClient:     httpClient,
		logger:         logger.With("component", "merge_provider"),
		maxPromptRunes: maxPromptRunes,
		defaultPrompt:  defaultPrompt,
	}, nil
}

// Kind implements Adapter.
func (m *FaceMerger) Kind() domain.TaskKind {
	return domain.TaskKindFaceMerge
}

// Submit implements Adapter. The provider works synchronously: by the
// time Submit returns, the merged image is uploaded and the result is
// final.
func (m *FaceMerger) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	prompt := NormalizePrompt(req.Prompt, m.maxPromptRunes, m.defaultPrompt)

	source, sourceMime, err := m.fetchImage(ctx, req.SourceImageURL)
	if err != nil {
		return nil, err
	}

	target, targetMime, err := m.fetchImage(ctx, req.TargetImageURL)
	if err != nil {
		return nil, err
	}

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(source, sourceMime),
		genai.NewPartFromBytes(target, targetMime),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.model, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	})
	if err != nil {
		return nil, NewTransportError(mergeProviderName, err)
	}

	merged := extractInlineImage(resp)
	if merged == nil {
		return nil, NewResponseError(mergeProviderName, "model returned no image")
	}

	taskID := "merge_" + uuid.New().String()
	key := fmt.Sprintf("merges/%s/%s.png", req.OwnerID, taskID)

	mediaURL, err := m.blobs.Upload(ctx, key, "image/png", bytes.NewReader(merged))
	if err != nil {
		return nil, fmt.Errorf("failed to store merged image: %w", err)
	}

	m.logger.Info("face merge generated", "task_id", taskID, "bytes", len(merged))

	return &SubmitResult{
		Mode:   ModeSync,
		TaskID: taskID,
		Result: &domain.TaskResult{
			MediaURL:  mediaURL,
			SizeBytes: int64(len(merged)),
		},
	}, nil
}

// Poll implements Adapter. Merges settle at submission time, so there is
// never anything to poll.
func (m *FaceMerger) Poll(ctx context.Context, taskID string) (*Outcome, error) {
	return nil, ErrPollUnsupported
}

func (m *FaceMerger) fetchImage(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, "", NewTransportError(mergeProviderName, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			m.logger.Warn("failed to close image response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, "", NewStatusError(mergeProviderName, resp.StatusCode,
			fmt.Sprintf("failed to fetch input image %s", url))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, "", NewTransportError(mergeProviderName, err)
	}

	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = "image/png"
	}

	return data, mime, nil
}

func extractInlineImage(resp *genai.GenerateContentResponse) []byte {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data
		}
	}
	return nil
}
