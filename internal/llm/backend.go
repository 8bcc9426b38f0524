// Package llm provides a uniform generation contract over heterogeneous
// text-generation backends, with retry, error classification and optional
// token streaming.
package llm

import "context"

// TokenFunc receives incrementally generated text. It must not block the
// producer for unbounded time; returning an error aborts the stream.
type TokenFunc func(token string) error

// Request is one generation call. If OnToken is nil the call is buffered
// and blocks until the complete text is available.
type Request struct {
	System      string
	Prompt      string
	// Prefill, when non-empty and supported by the backend, constrains
	// the continuation to begin with this text. The returned text always
	// includes the prefill.
	Prefill     string
	Model       string
	MaxTokens   int
	Temperature float64
	OnToken     TokenFunc
}

// Usage reports token accounting for a call when the backend provides it.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Backend is one interchangeable text-generation provider. Implementations
// must deliver tokens to OnToken in generation order with no reordering,
// and still return the full accumulated text at completion.
type Backend interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, Usage, error)
}
