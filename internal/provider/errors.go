package provider

import (
	"errors"
	"fmt"
)

// ErrOutcomePending is returned by Poll while the provider has not yet
// produced a terminal outcome for the task.
var ErrOutcomePending = errors.New("provider outcome not ready")

// ErrPollUnsupported is returned by Poll on providers that complete at
// submission time and therefore have nothing to poll.
var ErrPollUnsupported = errors.New("provider does not support polling")

// ErrorKind classifies a provider failure.
type ErrorKind string

// Possible failure classes.
const (
	// ErrorKindTransport covers network failures and timeouts: the
	// request may never have reached the provider.
	ErrorKindTransport ErrorKind = "transport"

	// ErrorKindStatus covers provider-reported failures (4xx/5xx or an
	// error payload): the provider saw the request and rejected it.
	ErrorKindStatus ErrorKind = "status"

	// ErrorKindResponse covers malformed or unusable provider responses.
	ErrorKindResponse ErrorKind = "response"
)

// Error is a classified provider failure. It always carries a
// human-readable reason suitable for recording on the task; provider
// failures are never silently dropped.
type Error struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int
	Reason     string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s provider %s error (status %d): %s", e.Provider, e.Kind, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("%s provider %s error: %s", e.Provider, e.Kind, e.Reason)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewTransportError classifies a network/timeout failure.
func NewTransportError(providerName string, err error) *Error {
	return &Error{
		Kind:     ErrorKindTransport,
		Provider: providerName,
		Reason:   fmt.Sprintf("request failed: %v", err),
		Err:      err,
	}
}

// NewStatusError classifies a provider-reported failure.
func NewStatusError(providerName string, statusCode int, detail string) *Error {
	return &Error{
		Kind:       ErrorKindStatus,
		Provider:   providerName,
		StatusCode: statusCode,
		Reason:     detail,
	}
}

// NewResponseError classifies an unusable provider response.
func NewResponseError(providerName, detail string) *Error {
	return &Error{
		Kind:     ErrorKindResponse,
		Provider: providerName,
		Reason:   detail,
	}
}

// FailureReason extracts a human-readable reason from any error for
// recording on a failed task.
func FailureReason(err error) string {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Reason
	}
	return err.Error()
}

// IsTransient reports whether the failure is worth retrying: transport
// errors and provider 5xx responses may succeed on a later attempt,
// while 4xx rejections will not.
func IsTransient(err error) bool {
	var pErr *Error
	if !errors.As(err, &pErr) {
		return false
	}
	if pErr.Kind == ErrorKindTransport {
		return true
	}
	return pErr.Kind == ErrorKindStatus && pErr.StatusCode >= 500
}
