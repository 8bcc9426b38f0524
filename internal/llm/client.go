package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lukasreiter/quorum/internal/config"
	"github.com/lukasreiter/quorum/internal/metrics"
)

// Client fronts the registered backends with retry, error classification,
// metrics and logging. It is the only path the orchestrator uses to reach
// a backend.
type Client struct {
	backends       map[string]Backend
	defaultBackend string
	retry          RetryPolicy
	collector      *metrics.Collector
	logger         *slog.Logger
}

// NewClient builds a client over explicit backends. The default backend id
// must be registered.
func NewClient(backends map[string]Backend, defaultBackend string, retry RetryPolicy, collector *metrics.Collector, logger *slog.Logger) (*Client, error) {
	if _, ok := backends[defaultBackend]; !ok {
		return nil, fmt.Errorf("%w: default backend %q not registered", ErrUnknownBackend, defaultBackend)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		backends:       backends,
		defaultBackend: defaultBackend,
		retry:          retry,
		collector:      collector,
		logger:         logger,
	}, nil
}

// FromConfig constructs every backend the configuration has credentials for
// and validates that the configured default is among them.
func FromConfig(ctx context.Context, cfg config.Config, collector *metrics.Collector, logger *slog.Logger) (*Client, error) {
	backends := make(map[string]Backend)

	if cfg.AnthropicAPIKey != "" {
		b, err := NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		if err != nil {
			return nil, err
		}
		backends[config.BackendAnthropic] = b
	}
	if cfg.OpenAIAPIKey != "" {
		b, err := NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			return nil, err
		}
		backends[config.BackendOpenAI] = b
	}
	if cfg.OllamaHost != "" {
		b, err := NewOllama(cfg.OllamaHost, cfg.OllamaModel)
		if err != nil {
			return nil, err
		}
		backends[config.BackendOllama] = b
	}
	if cfg.DefaultBackend == config.BackendBedrock {
		b, err := NewBedrock(ctx, cfg.BedrockRegion, cfg.BedrockModel)
		if err != nil {
			return nil, err
		}
		backends[config.BackendBedrock] = b
	}

	if _, ok := backends[cfg.DefaultBackend]; !ok {
		return nil, fmt.Errorf("%w: backend %q selected but not configured", ErrMissingCredentials, cfg.DefaultBackend)
	}

	return NewClient(backends, cfg.DefaultBackend, DefaultRetryPolicy(), collector, logger)
}

// Resolve maps a backend id (empty means the session default) to a
// registered backend. There is no fallback: an unknown id is an error, not
// a substitution.
func (c *Client) Resolve(backendID string) (Backend, error) {
	if backendID == "" {
		backendID = c.defaultBackend
	}
	b, ok := c.backends[backendID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backendID)
	}
	return b, nil
}

// DefaultBackend returns the session-wide default backend id.
func (c *Client) DefaultBackend() string {
	return c.defaultBackend
}

// Call is one generation request routed to a specific backend.
type Call struct {
	Backend string
	Request
}

// Generate runs one call with bounded retry. Tokens already delivered to
// OnToken are never replayed: once a stream has emitted output, a mid-stream
// failure propagates instead of retrying, because the consumer has already
// observed a prefix of the response.
func (c *Client) Generate(ctx context.Context, call Call) (string, int, error) {
	backend, err := c.Resolve(call.Backend)
	if err != nil {
		return "", 0, err
	}

	var emitted bool
	req := call.Request
	if orig := call.OnToken; orig != nil {
		req.OnToken = func(token string) error {
			emitted = true
			return orig(token)
		}
	}

	op := metrics.OpGenerate
	if req.OnToken != nil {
		op = metrics.OpGenerateStream
	}

	var text string
	var usage Usage
	start := time.Now()
	attempts, err := c.retry.Do(ctx, func() error {
		var genErr error
		text, usage, genErr = backend.Generate(ctx, req)
		if genErr != nil && emitted {
			// The consumer has already observed a prefix of the
			// response; replaying it would duplicate output.
			return errors.Join(ErrNonRetryable, genErr)
		}
		return genErr
	})
	duration := time.Since(start)

	if c.collector != nil {
		c.collector.RecordGeneration(op, duration, usage.InputTokens, usage.OutputTokens)
	}

	if err != nil {
		err = Classify(err)
		c.logger.Error("generation failed",
			"backend", backend.Name(),
			"model", req.Model,
			"attempts", attempts,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return text, attempts, err
	}

	c.logger.Debug("generation complete",
		"backend", backend.Name(),
		"model", req.Model,
		"attempts", attempts,
		"duration_ms", duration.Milliseconds(),
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
	)
	return text, attempts, nil
}
