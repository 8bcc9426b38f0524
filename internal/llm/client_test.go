package llm

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/lukasreiter/quorum/internal/metrics"
)

// scriptedBackend returns canned responses and can fail a fixed number of
// times before succeeding.
type scriptedBackend struct {
	name      string
	response  string
	failures  int
	failWith  error
	calls     int
	streamed  bool
}

func (b *scriptedBackend) Name() string { return b.name }

func (b *scriptedBackend) Generate(ctx context.Context, req Request) (string, Usage, error) {
	b.calls++
	if b.calls <= b.failures {
		return "", Usage{}, b.failWith
	}
	text := req.Prefill + b.response
	if req.OnToken != nil {
		b.streamed = true
		for _, word := range strings.SplitAfter(text, " ") {
			if err := req.OnToken(word); err != nil {
				return "", Usage{}, err
			}
		}
	}
	return text, Usage{InputTokens: 10, OutputTokens: 5}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestClient(t *testing.T, backends map[string]Backend, def string) *Client {
	t.Helper()
	c, err := NewClient(backends, def, zeroDelay(3), metrics.NewCollector(), testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestClientRetriesTransientFailures(t *testing.T) {
	backend := &scriptedBackend{name: "fake", response: "hello", failures: 2, failWith: errors.New("rate limit")}
	c := newTestClient(t, map[string]Backend{"fake": backend}, "fake")

	text, attempts, err := c.Generate(context.Background(), Call{Request: Request{Prompt: "hi"}})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if text != "hello" {
		t.Errorf("text = %q, want %q", text, "hello")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestClientNonRetryableSingleAttempt(t *testing.T) {
	backend := &scriptedBackend{name: "fake", failures: 10, failWith: errors.New("authentication failed")}
	c := newTestClient(t, map[string]Backend{"fake": backend}, "fake")

	_, attempts, err := c.Generate(context.Background(), Call{Request: Request{Prompt: "hi"}})
	if !errors.Is(err, ErrNonRetryable) {
		t.Errorf("expected ErrNonRetryable, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestClientNoBackendFallback(t *testing.T) {
	backend := &scriptedBackend{name: "fake", response: "x"}
	c := newTestClient(t, map[string]Backend{"fake": backend}, "fake")

	_, _, err := c.Generate(context.Background(), Call{Backend: "other", Request: Request{Prompt: "hi"}})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
	if backend.calls != 0 {
		t.Errorf("no call should reach the default backend, got %d", backend.calls)
	}
}

func TestClientStreamsTokensInOrder(t *testing.T) {
	backend := &scriptedBackend{name: "fake", response: "alpha beta gamma"}
	c := newTestClient(t, map[string]Backend{"fake": backend}, "fake")

	var got strings.Builder
	text, _, err := c.Generate(context.Background(), Call{Request: Request{
		Prompt:  "hi",
		OnToken: func(tok string) error { got.WriteString(tok); return nil },
	}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got.String() != text {
		t.Errorf("accumulated stream %q != returned text %q", got.String(), text)
	}
}

// A stream that fails after emitting tokens must not be retried: the
// consumer already observed a prefix of the response.
type midStreamFailBackend struct {
	calls int
}

func (b *midStreamFailBackend) Name() string { return "flaky" }

func (b *midStreamFailBackend) Generate(ctx context.Context, req Request) (string, Usage, error) {
	b.calls++
	if req.OnToken != nil {
		_ = req.OnToken("partial ")
	}
	return "", Usage{}, errors.New("connection reset")
}

func TestClientNoRetryAfterStreamOutput(t *testing.T) {
	backend := &midStreamFailBackend{}
	c := newTestClient(t, map[string]Backend{"flaky": backend}, "flaky")

	_, _, err := c.Generate(context.Background(), Call{Request: Request{
		Prompt:  "hi",
		OnToken: func(string) error { return nil },
	}})
	if err == nil {
		t.Fatal("expected error")
	}
	if backend.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry after emitted output)", backend.calls)
	}
}

func TestClientDefaultBackendRequired(t *testing.T) {
	_, err := NewClient(map[string]Backend{}, "missing", NoRetry(), nil, testLogger())
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}
