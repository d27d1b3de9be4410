package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/brocketdesign/chatlamix/internal/domain"
)

const videoProviderName = "videogen"

// videoSubmitRequest is the wire shape the video provider accepts.
type videoSubmitRequest struct {
	Prompt     string `json:"prompt"`
	ImageURL   string `json:"image_url"`
	WebhookURL string `json:"webhook_url"`
}

// videoSubmitResponse is the acknowledgement for an accepted job.
type videoSubmitResponse struct {
	TaskID string `json:"task_id"`
}

// videoStatusResponse is the poll shape for a previously submitted job.
type videoStatusResponse struct {
	TaskID          string  `json:"task_id"`
	Status          string  `json:"status"`
	VideoURL        string  `json:"video_url,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	Error           string  `json:"error,omitempty"`
}

// VideoGenerator adapts the asynchronous image-to-video provider. The
// provider acknowledges a submission with a task ID and reports the
// outcome later through the webhook URL included in the request; Poll
// covers tasks whose webhook never arrived.
type VideoGenerator struct {
	endpoint       string
	apiKey         string
	client         *http.Client
	logger         *slog.Logger
	maxPromptRunes int
	defaultPrompt  string
}

// NewVideoGenerator creates the adapter for the video provider at endpoint.
// The client's timeout bounds each call; media generation submissions are
// slow, so the caller configures a generous one.
func NewVideoGenerator(
	endpoint string,
	apiKey string,
	client *http.Client,
	maxPromptRunes int,
	defaultPrompt string,
	logger *slog.Logger,
) *VideoGenerator {
	return &VideoGenerator{
		endpoint:       endpoint,
		apiKey:         apiKey,
		client:         client,
		logger:         logger.With("component", "video_provider"),
		maxPromptRunes: maxPromptRunes,
		defaultPrompt:  defaultPrompt,
	}
}

// Kind implements Adapter.
func (g *VideoGenerator) Kind() domain.TaskKind {
	return domain.TaskKindImageToVideo
}

// Submit implements Adapter.
func (g *VideoGenerator) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	prompt := NormalizePrompt(req.Prompt, g.maxPromptRunes, g.defaultPrompt)

	payload := videoSubmitRequest{
		Prompt:     prompt,
		ImageURL:   req.SourceImageURL,
		WebhookURL: req.CallbackURL,
	}

	var ack videoSubmitResponse
	if err := g.postJSON(ctx, g.endpoint+"/v1/generations", payload, &ack); err != nil {
		return nil, err
	}

	if ack.TaskID == "" {
		return nil, NewResponseError(videoProviderName, "submission acknowledged without a task id")
	}

	g.logger.Info("video generation submitted", "provider_task_id", ack.TaskID)

	return &SubmitResult{
		Mode:   ModeAsync,
		TaskID: ack.TaskID,
	}, nil
}

// Poll implements Adapter.
func (g *VideoGenerator) Poll(ctx context.Context, taskID string) (*Outcome, error) {
	var status videoStatusResponse
	if err := g.getJSON(ctx, g.endpoint+"/v1/generations/"+taskID, &status); err != nil {
		return nil, err
	}

	switch status.Status {
	case "pending", "processing", "queued":
		return nil, ErrOutcomePending
	case "completed":
		if status.VideoURL == "" {
			return &Outcome{TaskID: taskID, FailureReason: "provider reported completion without a result"}, nil
		}
		return &Outcome{
			TaskID: taskID,
			Result: &domain.TaskResult{
				MediaURL:        status.VideoURL,
				DurationSeconds: status.DurationSeconds,
			},
		}, nil
	case "failed":
		reason := status.Error
		if reason == "" {
			reason = "provider reported failure without detail"
		}
		return &Outcome{TaskID: taskID, FailureReason: reason}, nil
	default:
		return nil, NewResponseError(videoProviderName,
			fmt.Sprintf("unknown task status %q", status.Status))
	}
}

func (g *VideoGenerator) postJSON(ctx context.Context, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode provider request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	return g.do(req, out)
}

func (g *VideoGenerator) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	return g.do(req, out)
}

func (g *VideoGenerator) do(req *http.Request, out any) error {
	resp, err := g.client.Do(req)
	if err != nil {
		return NewTransportError(videoProviderName, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			g.logger.Warn("failed to close provider response body", "error", closeErr)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return NewTransportError(videoProviderName, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := string(raw)
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return NewStatusError(videoProviderName, resp.StatusCode, detail)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return NewResponseError(videoProviderName,
			fmt.Sprintf("unparseable response: %v", err))
	}

	return nil
}
