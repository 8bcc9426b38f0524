package llm

import (
	"context"
	"errors"
	"strings"
)

// Sentinel errors for generation calls. Use errors.Is() in calling code.
var (
	// ErrNonRetryable marks backend errors that will not succeed on retry:
	// bad credentials, malformed requests, billing problems. Retrying these
	// wastes quota and hides the real problem from the caller.
	ErrNonRetryable = errors.New("non-retryable backend error")

	// ErrAborted marks calls terminated by cancellation (caller context or
	// transport abort), distinguishable from a backend failure.
	ErrAborted = errors.New("generation aborted")

	// ErrMissingCredentials indicates a backend was selected without the
	// credentials it needs. Fails before any call is made.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrUnknownBackend indicates a call resolved to a backend id that is
	// not registered. Backend choice is a precondition, never negotiated.
	ErrUnknownBackend = errors.New("unknown backend")
)

// nonRetryablePatterns match error text that indicates auth, billing or
// request-shape failures across providers.
var nonRetryablePatterns = []string{
	"credit balance",
	"quota exceeded",
	"billing",
	"invalid api key",
	"api key not",
	"authentication",
	"unauthorized",
	"forbidden",
	"401",
	"403",
	"invalid_request",
	"malformed",
}

// retryablePatterns match transient conditions worth retrying.
var retryablePatterns = []string{
	"overloaded",
	"rate limit",
	"rate_limit",
	"429",
	"500",
	"502",
	"503",
	"529",
	"timeout",
	"deadline exceeded",
	"connection reset",
	"connection refused",
	"temporarily unavailable",
	"server error",
}

// Retryable reports whether an error is worth retrying. Cancellation is
// never retryable; unclassified errors default to retryable once, on the
// grounds that transient network faults rarely self-describe.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrAborted) {
		return false
	}
	if errors.Is(err, ErrNonRetryable) || errors.Is(err, ErrMissingCredentials) || errors.Is(err, ErrUnknownBackend) {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, p := range nonRetryablePatterns {
		if strings.Contains(msg, p) {
			return false
		}
	}
	for _, p := range retryablePatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return true
}

// Classify wraps an error with the matching sentinel so callers can branch
// with errors.Is. Errors already carrying a sentinel pass through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAborted) || errors.Is(err, ErrNonRetryable) ||
		errors.Is(err, ErrMissingCredentials) || errors.Is(err, ErrUnknownBackend) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return errors.Join(ErrAborted, err)
	}

	msg := strings.ToLower(err.Error())
	for _, p := range nonRetryablePatterns {
		if strings.Contains(msg, p) {
			return errors.Join(ErrNonRetryable, err)
		}
	}
	return err
}
