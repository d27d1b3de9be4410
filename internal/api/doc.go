// Package api implements the HTTP surface: generation submission
// endpoints, the provider webhook, the SSE event stream, and the safe
// mapping of internal errors onto HTTP responses. Handlers never leak
// internal error strings to clients.
package api
