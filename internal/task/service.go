package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/brocketdesign/chatlamix/internal/dedup"
	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/brocketdesign/chatlamix/internal/platform/logger"
	"github.com/brocketdesign/chatlamix/internal/provider"
	"github.com/brocketdesign/chatlamix/internal/store"
	"github.com/google/uuid"
)

// ErrUnsupportedKind is returned when no adapter serves the requested
// task kind.
var ErrUnsupportedKind = errors.New("unsupported task kind")

// GenerateRequest is one caller-facing generation request.
type GenerateRequest struct {
	Kind             domain.TaskKind
	OwnerID          uuid.UUID
	ConversationID   uuid.UUID
	SourceArtifactID uuid.UUID
	PlaceholderID    string
	Prompt           string
	SourceImageURL   string
	TargetImageURL   string
}

// GenerateResult is the submission outcome. Async submissions report the
// accepted task; sync submissions additionally carry the finished
// artifact, finalized through the same completion path a webhook uses.
type GenerateResult struct {
	TaskID   string
	Status   domain.TaskStatus
	Artifact *domain.GeneratedArtifact
}

// GenerationService is the entry point for generation submissions. All
// concurrent identical requests (same content fingerprint) collapse into
// one provider call through the dedup group.
type GenerationService struct {
	tasks      store.TaskStore
	adapters   map[domain.TaskKind]provider.Adapter
	group      *dedup.Group
	completion *CompletionHandler
	signer     *provider.CallbackSigner
	logger     *slog.Logger
}

// NewGenerationService wires the service over the given adapters.
func NewGenerationService(
	tasks store.TaskStore,
	adapters []provider.Adapter,
	group *dedup.Group,
	completion *CompletionHandler,
	signer *provider.CallbackSigner,
	log *slog.Logger,
) *GenerationService {
	byKind := make(map[domain.TaskKind]provider.Adapter, len(adapters))
	for _, a := range adapters {
		byKind[a.Kind()] = a
	}
	return &GenerationService{
		tasks:      tasks,
		adapters:   byKind,
		group:      group,
		completion: completion,
		signer:     signer,
		logger:     log.With("component", "generation_service"),
	}
}

// Generate submits one generation request, joining any identical request
// already in flight instead of calling the provider again.
func (s *GenerationService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	adapter, ok := s.adapters[req.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, req.Kind)
	}

	fp := dedup.Fingerprint(string(req.Kind), map[string]string{
		"owner":  req.OwnerID.String(),
		"prompt": req.Prompt,
		"source": req.SourceImageURL,
		"target": req.TargetImageURL,
	})

	v, err := s.group.Do(ctx, fp, func(ctx context.Context) (any, error) {
		return s.submit(ctx, adapter, req)
	})
	if err != nil {
		return nil, err
	}

	return v.(*GenerateResult), nil
}

// submit performs the single upstream call for one fingerprint.
func (s *GenerationService) submit(
	ctx context.Context,
	adapter provider.Adapter,
	req GenerateRequest,
) (*GenerateResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		"kind", req.Kind,
		"owner_id", req.OwnerID,
		"placeholder_id", req.PlaceholderID,
	)

	callbackURL, err := s.signer.SignedURL(req.PlaceholderID, req.PlaceholderID)
	if err != nil {
		return nil, fmt.Errorf("failed to build callback URL: %w", err)
	}

	submitted, err := adapter.Submit(ctx, provider.SubmitRequest{
		OwnerID:        req.OwnerID,
		Prompt:         req.Prompt,
		SourceImageURL: req.SourceImageURL,
		TargetImageURL: req.TargetImageURL,
		CallbackURL:    callbackURL,
	})
	if err != nil {
		log.Error("provider submission failed", "error", err)
		return nil, err
	}

	t, err := domain.NewTask(
		req.Kind,
		submitted.TaskID,
		req.PlaceholderID,
		req.OwnerID,
		req.ConversationID,
		req.SourceArtifactID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to record task: %w", err)
	}

	log.Info("task recorded", "task_id", t.TaskID, "mode", submitted.Mode)

	if submitted.Mode == provider.ModeAsync {
		return &GenerateResult{TaskID: t.TaskID, Status: domain.TaskStatusPending}, nil
	}

	// Sync providers already hold the finished result. Feed it through
	// the completion handler so sync and async share one finalization
	// path instead of a shortcut.
	artifact, err := s.completion.HandleCompletion(ctx, Signal{
		TaskID:        t.TaskID,
		PlaceholderID: t.PlaceholderID,
		Result:        submitted.Result,
	})
	if err != nil {
		return nil, err
	}

	return &GenerateResult{
		TaskID:   t.TaskID,
		Status:   domain.TaskStatusCompleted,
		Artifact: artifact,
	}, nil
}
