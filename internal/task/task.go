package task

import (
	"github.com/brocketdesign/chatlamix/internal/domain"
)

// Signal is a completion notification for one task, arriving either from
// the inbound webhook or from the reconciliation poll. It carries at
// least one correlation key and either a result or a failure reason.
type Signal struct {
	TaskID        string
	PlaceholderID string
	Result        *domain.TaskResult
	FailureReason string
}

// Decision is the outcome of the pure completion transition function.
type Decision int

// Possible decisions.
const (
	// DecisionIgnore means the signal must not change the task: it is
	// already in a terminal state, so this is a duplicate or late signal.
	DecisionIgnore Decision = iota

	// DecisionFinalize means the side effects run and, if they succeed,
	// the task completes.
	DecisionFinalize

	// DecisionFail means the task moves to failed with the signal's
	// reason (or "no result" when the signal carries neither result nor
	// reason).
	DecisionFail
)

// Decide is the pure transition function of the completion state machine:
// given the task's current status and an incoming signal, it returns what
// should happen, without performing any effect. Terminal states absorb
// every signal; a signal without a result fails the task; everything else
// finalizes.
func Decide(current domain.TaskStatus, sig Signal) Decision {
	if current.Terminal() {
		return DecisionIgnore
	}

	if sig.Result == nil || sig.Result.MediaURL == "" {
		return DecisionFail
	}

	return DecisionFinalize
}

// failureReason normalizes the reason recorded on a failed task.
func failureReason(sig Signal) string {
	if sig.FailureReason != "" {
		return sig.FailureReason
	}
	return "no result"
}
