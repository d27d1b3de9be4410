// Package store defines the persistence interfaces the generation
// subsystem depends on: durable task rows, generated artifacts,
// conversation side effects, and milestone awards. Implementations live
// in internal/platform/postgres; services depend only on these
// interfaces so tests can substitute in-memory fakes.
package store
