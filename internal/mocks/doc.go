// Package mocks provides centralized mock implementations for testing.
//
// Each mock implements one of the application's interfaces with two layers
// of behavior: optional function fields (CreateFn, SubmitFn, ...) that
// override individual methods, and an in-memory default implementation
// backing the rest. Tests that care about idempotency and duplicate
// detection lean on the in-memory defaults, which enforce the same
// uniqueness rules the real stores do; tests that need a specific failure
// inject it through the function fields.
package mocks
