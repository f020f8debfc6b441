package responder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wolfman30/marcel-receptionist/internal/llm"
	"github.com/wolfman30/marcel-receptionist/internal/session"
)

// DefaultTierTimeout bounds a single tier attempt.
const DefaultTierTimeout = 5 * time.Second

var errTierTimeout = errors.New("responder: tier timed out")

// Strategy produces a reply for one prompt.
type Strategy interface {
	Attempt(ctx context.Context, p Prompt) (string, error)
}

// Tier is one step of the fallback chain. Sanitize marks output that comes
// from a model and must be cleaned and guarded before it is spoken.
type Tier struct {
	Name     string
	Strategy Strategy
	Sanitize bool
}

// LLMTier wraps an LLM client as a sanitized tier.
func LLMTier(name string, client llm.Client, maxTokens int32) Tier {
	return Tier{
		Name:     name,
		Strategy: &LLMStrategy{Client: client, MaxTokens: maxTokens, Temperature: 0.4},
		Sanitize: true,
	}
}

// RulesTier wraps the rule engine. Its output is already speech-ready.
func RulesTier(r *Rules) Tier {
	return Tier{Name: "rules", Strategy: r}
}

// LLMStrategy asks a language model for the reply.
type LLMStrategy struct {
	Client      llm.Client
	MaxTokens   int32
	Temperature float32
}

func (s *LLMStrategy) Attempt(ctx context.Context, p Prompt) (string, error) {
	if s.Client == nil {
		return "", errors.New("responder: llm client not configured")
	}
	resp, err := s.Client.Complete(ctx, llm.Request{
		System:      []string{systemPrompt, p.ContextBlock()},
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: p.Utterance}},
		MaxTokens:   s.MaxTokens,
		Temperature: s.Temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

type attemptResult struct {
	text string
	err  error
}

// race runs one tier attempt against the timeout. A result that arrives
// after the deadline lands in the buffered channel and is dropped with it.
func race(ctx context.Context, tier Tier, p Prompt, timeout time.Duration) (string, error) {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan attemptResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- attemptResult{err: fmt.Errorf("responder: tier %s panicked: %v", tier.Name, r)}
			}
		}()
		text, err := tier.Strategy.Attempt(tctx, p)
		ch <- attemptResult{text: text, err: err}
	}()

	select {
	case res := <-ch:
		return res.text, res.err
	case <-tctx.Done():
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", errTierTimeout
	}
}

func historyFor(sess *session.Session, n int) []session.Turn {
	recent := sess.Recent(n)
	return append([]session.Turn(nil), recent...)
}
