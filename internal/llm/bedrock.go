package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// BedrockBackend invokes Anthropic models through AWS Bedrock using the
// messages payload format.
type BedrockBackend struct {
	client       *bedrockruntime.Client
	defaultModel string
}

// NewBedrock creates a Bedrock-backed generation backend using the default
// AWS credential chain.
func NewBedrock(ctx context.Context, region, defaultModel string) (*BedrockBackend, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &BedrockBackend{
		client:       bedrockruntime.NewFromConfig(cfg),
		defaultModel: defaultModel,
	}, nil
}

// Name returns the backend identifier.
func (b *BedrockBackend) Name() string {
	return "bedrock"
}

type bedrockMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	System           string           `json:"system,omitempty"`
	Messages         []bedrockMessage `json:"messages"`
	MaxTokens        int              `json:"max_tokens"`
	Temperature      float64          `json:"temperature,omitempty"`
}

type bedrockResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
}

// bedrockStreamEvent covers the chunk event shapes we care about: text
// deltas and usage accounting.
type bedrockStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Message struct {
		Usage struct {
			InputTokens int64 `json:"input_tokens"`
		} `json:"usage"`
	} `json:"message"`
	Usage struct {
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
}

func (b *BedrockBackend) payload(req Request) ([]byte, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	messages := []bedrockMessage{{Role: "user", Content: req.Prompt}}
	if req.Prefill != "" {
		messages = append(messages, bedrockMessage{Role: "assistant", Content: req.Prefill})
	}
	return json.Marshal(bedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		System:           req.System,
		Messages:         messages,
		MaxTokens:        maxTokens,
		Temperature:      req.Temperature,
	})
}

func (b *BedrockBackend) model(req Request) string {
	if req.Model != "" {
		return req.Model
	}
	return b.defaultModel
}

// Generate invokes the model, streaming when OnToken is set.
func (b *BedrockBackend) Generate(ctx context.Context, req Request) (string, Usage, error) {
	body, err := b.payload(req)
	if err != nil {
		return "", Usage{}, fmt.Errorf("bedrock payload: %w", err)
	}

	if req.OnToken != nil {
		return b.generateStream(ctx, req, body)
	}

	out, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.model(req)),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", Usage{}, Classify(fmt.Errorf("bedrock invoke: %w", err))
	}

	var resp bedrockResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", Usage{}, fmt.Errorf("bedrock response: %w", err)
	}

	var text strings.Builder
	text.WriteString(req.Prefill)
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return text.String(), Usage{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}, nil
}

func (b *BedrockBackend) generateStream(ctx context.Context, req Request, body []byte) (string, Usage, error) {
	out, err := b.client.InvokeModelWithResponseStream(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     aws.String(b.model(req)),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", Usage{}, Classify(fmt.Errorf("bedrock stream: %w", err))
	}

	stream := out.GetStream()
	defer stream.Close()

	var text strings.Builder
	var usage Usage
	if req.Prefill != "" {
		text.WriteString(req.Prefill)
	}

	for event := range stream.Events() {
		chunk, ok := event.(*brtypes.ResponseStreamMemberChunk)
		if !ok {
			continue
		}

		var ev bedrockStreamEvent
		if err := json.Unmarshal(chunk.Value.Bytes, &ev); err != nil {
			continue
		}

		switch ev.Type {
		case "message_start":
			usage.InputTokens = ev.Message.Usage.InputTokens
		case "content_block_delta":
			if ev.Delta.Type == "text_delta" && ev.Delta.Text != "" {
				text.WriteString(ev.Delta.Text)
				if err := req.OnToken(ev.Delta.Text); err != nil {
					return text.String(), usage, Classify(err)
				}
			}
		case "message_delta":
			usage.OutputTokens += ev.Usage.OutputTokens
		}
	}

	if err := stream.Err(); err != nil {
		return text.String(), usage, Classify(fmt.Errorf("bedrock stream: %w", err))
	}
	return text.String(), usage, nil
}
