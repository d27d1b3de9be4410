package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// CounterScope selects which aggregate a generation counter or milestone
// award applies to.
type CounterScope string

// Supported counter scopes.
const (
	ScopeOwner        CounterScope = "owner"
	ScopeConversation CounterScope = "conversation"
)

// Common validation errors for MilestoneAward.
var (
	ErrEmptyAwardOwnerID    = errors.New("award owner ID cannot be empty")
	ErrEmptyAwardScopeID    = errors.New("award scope ID cannot be empty")
	ErrInvalidAwardScope    = errors.New("invalid award scope")
	ErrNonPositiveThreshold = errors.New("award threshold must be positive")
)

// MilestoneAward records that an owner crossed a generation-count
// threshold, either globally or within one conversation. Awarding is
// idempotent: the (owner, scope, scope ID, kind, threshold) tuple is
// unique, so re-evaluating milestones after a retry never double-awards.
type MilestoneAward struct {
	ID        uuid.UUID    `json:"id"`
	OwnerID   uuid.UUID    `json:"owner_id"`
	Scope     CounterScope `json:"scope"`
	ScopeID   uuid.UUID    `json:"scope_id"`
	Kind      TaskKind     `json:"kind"`
	Threshold int64        `json:"threshold"`
	AwardedAt time.Time    `json:"awarded_at"`
}

// NewMilestoneAward builds an award for the given owner and threshold.
func NewMilestoneAward(
	ownerID uuid.UUID,
	scope CounterScope,
	scopeID uuid.UUID,
	kind TaskKind,
	threshold int64,
) (*MilestoneAward, error) {
	award := &MilestoneAward{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Scope:     scope,
		ScopeID:   scopeID,
		Kind:      kind,
		Threshold: threshold,
		AwardedAt: time.Now().UTC(),
	}

	if err := award.Validate(); err != nil {
		return nil, err
	}

	return award, nil
}

// Validate checks that the MilestoneAward carries valid data.
func (a *MilestoneAward) Validate() error {
	if a.OwnerID == uuid.Nil {
		return ErrEmptyAwardOwnerID
	}

	if a.ScopeID == uuid.Nil {
		return ErrEmptyAwardScopeID
	}

	if a.Scope != ScopeOwner && a.Scope != ScopeConversation {
		return ErrInvalidAwardScope
	}

	if a.Threshold <= 0 {
		return ErrNonPositiveThreshold
	}

	if !isValidTaskKind(a.Kind) {
		return ErrInvalidTaskKind
	}

	return nil
}
