// Package task orchestrates the lifecycle of asynchronous generation
// tasks: submission (deduplicated against concurrent identical requests),
// finalization when a completion signal arrives by webhook or poll,
// idempotent application of completion side effects, and startup recovery
// of tasks a previous process left in flight.
//
// The completion state machine is split into a pure decision function
// (Decide) and an effect executor (CompletionHandler) so both can be
// tested independently.
package task
