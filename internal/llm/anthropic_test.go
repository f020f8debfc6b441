package llm

import (
	"context"
	"errors"
	"testing"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnthropicMessages struct {
	got  anthropicsdk.MessageNewParams
	resp *anthropicsdk.Message
	err  error
}

func (s *stubAnthropicMessages) New(_ context.Context, params anthropicsdk.MessageNewParams, _ ...option.RequestOption) (*anthropicsdk.Message, error) {
	s.got = params
	return s.resp, s.err
}

func TestAnthropicClientComplete(t *testing.T) {
	stub := &stubAnthropicMessages{resp: &anthropicsdk.Message{
		Content: []anthropicsdk.ContentBlockUnion{
			{Type: "text", Text: " Parfait, demain à 14h. "},
		},
		StopReason: anthropicsdk.StopReasonEndTurn,
	}}
	client := newAnthropicClientWithMessages(stub, "claude-test")

	resp, err := client.Complete(context.Background(), Request{
		System: []string{"Tu es Marcel.", "  "},
		Messages: []Message{
			{Role: RoleUser, Content: "Bonjour"},
			{Role: RoleAssistant, Content: "Bonjour! À qui ai-je le plaisir de parler?"},
			{Role: RoleSystem, Content: "Contexte: client connu."},
			{Role: RoleUser, Content: "demain 14h"},
		},
		MaxTokens:   150,
		Temperature: 0.4,
	})
	require.NoError(t, err)
	assert.Equal(t, "Parfait, demain à 14h.", resp.Text)
	assert.Equal(t, "end_turn", resp.StopReason)

	assert.Equal(t, anthropicsdk.Model("claude-test"), stub.got.Model)
	assert.Equal(t, int64(150), stub.got.MaxTokens)
	require.Len(t, stub.got.System, 2)
	assert.Equal(t, "Contexte: client connu.", stub.got.System[1].Text)
	require.Len(t, stub.got.Messages, 3)
	assert.Equal(t, anthropicsdk.MessageParamRoleAssistant, stub.got.Messages[1].Role)
}

func TestAnthropicClientErrors(t *testing.T) {
	ctx := context.Background()
	req := Request{Messages: []Message{{Role: RoleUser, Content: "allo"}}}

	failing := newAnthropicClientWithMessages(&stubAnthropicMessages{err: errors.New("overloaded")}, "m")
	_, err := failing.Complete(ctx, req)
	assert.ErrorContains(t, err, "overloaded")

	empty := newAnthropicClientWithMessages(&stubAnthropicMessages{resp: &anthropicsdk.Message{}}, "m")
	_, err = empty.Complete(ctx, req)
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = empty.Complete(ctx, Request{})
	assert.Error(t, err)

	_, err = empty.Complete(ctx, Request{Messages: []Message{{Role: "tool", Content: "x"}}})
	assert.Error(t, err)

	_, err = NewAnthropicClient(" ", "")
	assert.Error(t, err)
}
