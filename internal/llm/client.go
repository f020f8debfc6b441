// Package llm adapts hosted text-generation APIs to one small interface.
package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Message is one chat message sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	InputTokens  int32
	OutputTokens int32
}

type Request struct {
	System    []string
	Messages  []Message
	MaxTokens int32
	// Temperature below zero leaves the provider default.
	Temperature float32
}

type Response struct {
	Text       string
	Usage      Usage
	StopReason string
}

// Client completes a chat request. Implementations honor ctx cancellation.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
