package api

import (
	"errors"
	"net/http"

	"github.com/brocketdesign/chatlamix/internal/provider"
	"github.com/brocketdesign/chatlamix/internal/store"
	"github.com/brocketdesign/chatlamix/internal/task"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	var provErr *provider.Error

	switch {
	case errors.Is(err, provider.ErrInvalidCallbackToken),
		errors.Is(err, provider.ErrExpiredCallbackToken):
		return http.StatusUnauthorized

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, task.ErrUnsupportedKind):
		return http.StatusBadRequest

	// Upstream provider failure: our server is fine, theirs is not.
	case errors.As(err, &provErr):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var provErr *provider.Error

	switch {
	case errors.Is(err, provider.ErrInvalidCallbackToken),
		errors.Is(err, provider.ErrExpiredCallbackToken):
		return "Invalid callback token"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrArtifactNotFound):
		return "Artifact not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrDuplicate):
		return "Already exists"

	case errors.Is(err, task.ErrUnsupportedKind):
		return "Unsupported generation kind"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	case errors.As(err, &provErr):
		return "Generation provider rejected the request"

	default:
		return "An unexpected error occurred"
	}
}
