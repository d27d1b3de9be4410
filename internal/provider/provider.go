// Package provider normalizes heterogeneous generation providers behind a
// single submit/poll contract. Some providers finish synchronously and
// hand back the artifact inline; others accept the job and report the
// outcome later through a webhook. Adapters hide that difference: a sync
// result is shaped exactly like an already-fired webhook so both paths
// feed the same finalization logic downstream.
package provider

import (
	"context"

	"github.com/brocketdesign/chatlamix/internal/domain"
	"github.com/google/uuid"
)

// Mode distinguishes how a provider delivers its outcome.
type Mode string

// Possible delivery modes.
const (
	ModeSync  Mode = "sync"
	ModeAsync Mode = "async"
)

// SubmitRequest carries everything an adapter needs to start a generation.
type SubmitRequest struct {
	OwnerID        uuid.UUID
	Prompt         string
	SourceImageURL string
	TargetImageURL string
	CallbackURL    string
}

// SubmitResult is the normalized outcome of a submission.
// Async providers return a TaskID and a nil Result; sync providers return
// a synthetic TaskID together with the finished Result.
type SubmitResult struct {
	Mode   Mode
	TaskID string
	Result *domain.TaskResult
}

// Outcome is what a poll observes for a previously submitted task:
// either the finished result or a failure reason. Poll returns
// ErrOutcomePending instead of an Outcome while the provider is still
// working.
type Outcome struct {
	TaskID        string
	Result        *domain.TaskResult
	FailureReason string
}

// Adapter is the contract every provider integration implements.
type Adapter interface {
	// Kind reports which task kind this adapter serves.
	Kind() domain.TaskKind

	// Submit starts a generation. Prompt validation and truncation happen
	// inside the adapter, before anything reaches the wire.
	Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error)

	// Poll asks the provider for the outcome of an async task.
	// Returns ErrOutcomePending while the task is still running.
	Poll(ctx context.Context, taskID string) (*Outcome, error)
}
