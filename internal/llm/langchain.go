package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// ChatBackend adapts a langchaingo chat model to the Backend contract.
type ChatBackend struct {
	name         string
	defaultModel string
	llm          llms.Model
	// prefillable backends accept a trailing assistant message as a
	// forced continuation prefix (Anthropic-style).
	prefillable bool
}

// NewAnthropic creates an Anthropic-backed generation backend.
func NewAnthropic(apiKey, defaultModel string) (*ChatBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic: %w", ErrMissingCredentials)
	}
	model, err := anthropic.New(
		anthropic.WithToken(apiKey),
		anthropic.WithModel(defaultModel),
	)
	if err != nil {
		return nil, fmt.Errorf("create anthropic backend: %w", err)
	}
	return &ChatBackend{name: "anthropic", defaultModel: defaultModel, llm: model, prefillable: true}, nil
}

// NewOpenAI creates an OpenAI-backed generation backend.
func NewOpenAI(apiKey, defaultModel string) (*ChatBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingCredentials)
	}
	model, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(defaultModel),
	)
	if err != nil {
		return nil, fmt.Errorf("create openai backend: %w", err)
	}
	return &ChatBackend{name: "openai", defaultModel: defaultModel, llm: model}, nil
}

// NewOllama creates an Ollama-backed generation backend.
func NewOllama(host, defaultModel string) (*ChatBackend, error) {
	model, err := ollama.New(
		ollama.WithServerURL(host),
		ollama.WithModel(defaultModel),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama backend: %w", err)
	}
	return &ChatBackend{name: "ollama", defaultModel: defaultModel, llm: model}, nil
}

// Name returns the backend identifier.
func (b *ChatBackend) Name() string {
	return b.name
}

// Generate issues one chat completion. Tokens are forwarded to req.OnToken
// as they arrive when set; the accumulated text is returned either way.
func (b *ChatBackend) Generate(ctx context.Context, req Request) (string, Usage, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.System),
		llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt),
	}
	if req.Prefill != "" && b.prefillable {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeAI, req.Prefill))
	}

	opts := []llms.CallOption{}
	if req.Model != "" {
		opts = append(opts, llms.WithModel(req.Model))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(req.Temperature))
	}
	if req.OnToken != nil {
		opts = append(opts, llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			return req.OnToken(string(chunk))
		}))
	}

	resp, err := b.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", Usage{}, Classify(fmt.Errorf("%s generate: %w", b.name, err))
	}
	if len(resp.Choices) == 0 {
		return "", Usage{}, fmt.Errorf("%s generate: no response choices", b.name)
	}

	choice := resp.Choices[0]
	text := choice.Content
	if req.Prefill != "" && b.prefillable {
		// Continuation responses exclude the forced prefix.
		text = req.Prefill + text
	}

	return text, usageFromInfo(choice.GenerationInfo), nil
}

// usageFromInfo extracts token accounting from langchaingo's loosely typed
// generation info. Providers disagree on key names and numeric types.
func usageFromInfo(info map[string]any) Usage {
	var u Usage
	u.InputTokens = intFromInfo(info, "InputTokens", "PromptTokens")
	u.OutputTokens = intFromInfo(info, "OutputTokens", "CompletionTokens")
	return u
}

func intFromInfo(info map[string]any, keys ...string) int64 {
	for _, k := range keys {
		switch v := info[k].(type) {
		case int:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		}
	}
	return 0
}
