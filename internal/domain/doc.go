// Package domain contains the core entities of the generation subsystem:
// tasks tracking the lifecycle of long-running generation requests, the
// artifacts those requests produce, the synthetic conversation messages
// that surface artifacts in a transcript, and milestone awards.
//
// Domain types validate themselves and carry no persistence or transport
// concerns; stores and handlers depend on this package, never the reverse.
package domain
