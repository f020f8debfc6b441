package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

type anthropicMessages interface {
	New(ctx context.Context, params anthropicsdk.MessageNewParams, opts ...option.RequestOption) (*anthropicsdk.Message, error)
}

// AnthropicClient calls Claude through the Messages API.
type AnthropicClient struct {
	msgs  anthropicMessages
	model anthropicsdk.Model
}

// NewAnthropicClient builds a client for the given API key and model.
func NewAnthropicClient(apiKey, model string) (*AnthropicClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("llm: anthropic api key is required")
	}
	if strings.TrimSpace(model) == "" {
		model = "claude-3-5-haiku-latest"
	}
	// One attempt per tier; the SDK must not retry behind the tier timeout.
	client := anthropicsdk.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(0))
	return &AnthropicClient{msgs: &client.Messages, model: anthropicsdk.Model(model)}, nil
}

func newAnthropicClientWithMessages(msgs anthropicMessages, model string) *AnthropicClient {
	return &AnthropicClient{msgs: msgs, model: anthropicsdk.Model(model)}
}

func (c *AnthropicClient) Complete(ctx context.Context, req Request) (Response, error) {
	var system []anthropicsdk.TextBlockParam
	for _, block := range req.System {
		if trimmed := strings.TrimSpace(block); trimmed != "" {
			system = append(system, anthropicsdk.TextBlockParam{Text: trimmed})
		}
	}

	messages := make([]anthropicsdk.MessageParam, 0, len(req.Messages))
	for _, msg := range req.Messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		switch msg.Role {
		case RoleSystem:
			system = append(system, anthropicsdk.TextBlockParam{Text: content})
		case RoleUser:
			messages = append(messages, anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(content)))
		case RoleAssistant:
			messages = append(messages, anthropicsdk.NewAssistantMessage(anthropicsdk.NewTextBlock(content)))
		default:
			return Response{}, fmt.Errorf("llm: unsupported role %q", msg.Role)
		}
	}
	if len(messages) == 0 {
		return Response{}, errors.New("llm: anthropic requires at least one message")
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 256
	}
	params := anthropicsdk.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  messages,
	}
	if len(system) > 0 {
		params.System = system
	}
	if req.Temperature >= 0 {
		params.Temperature = param.NewOpt(float64(req.Temperature))
	}

	msg, err := c.msgs.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("llm: anthropic completion failed: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return Response{}, ErrEmptyResponse
	}
	return Response{
		Text:       text,
		StopReason: string(msg.StopReason),
		Usage: Usage{
			InputTokens:  int32(msg.Usage.InputTokens),
			OutputTokens: int32(msg.Usage.OutputTokens),
		},
	}, nil
}
