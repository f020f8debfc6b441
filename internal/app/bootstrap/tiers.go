package bootstrap

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/wolfman30/marcel-receptionist/internal/config"
	"github.com/wolfman30/marcel-receptionist/internal/directory"
	"github.com/wolfman30/marcel-receptionist/internal/llm"
	"github.com/wolfman30/marcel-receptionist/internal/responder"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

// TierSet is the fallback chain built from LLM_TIERS. The rule engine is
// always last.
type TierSet struct {
	Tiers            []responder.Tier
	ClaudeConfigured bool
	closers          []func() error
}

// Close releases provider clients that hold connections.
func (s *TierSet) Close() {
	for _, c := range s.closers {
		_ = c()
	}
}

// BuildTiers creates one tier per configured provider, in LLM_TIERS order.
// Providers without credentials are skipped with a warning so the service
// still answers through the rule engine.
func BuildTiers(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, dir *directory.Directory, logger *logging.Logger) *TierSet {
	set := &TierSet{}
	maxTokens := int32(cfg.LLMMaxTokens)
	add := func(name string, client llm.Client) {
		set.Tiers = append(set.Tiers, responder.LLMTier(name, client, maxTokens))
		logger.Info("response tier enabled", "tier", name)
	}

	for _, name := range cfg.LLMTiers {
		switch name {
		case "claude", "anthropic":
			client, err := llm.NewAnthropicClient(cfg.AnthropicKey, cfg.AnthropicModel)
			if err != nil {
				logger.Warn("response tier skipped", "tier", name, "error", err)
				continue
			}
			add("claude", client)
			set.ClaudeConfigured = true
		case "openai":
			client, err := llm.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel)
			if err != nil {
				logger.Warn("response tier skipped", "tier", name, "error", err)
				continue
			}
			add("openai", client)
		case "bedrock":
			if awsCfg == nil {
				logger.Warn("response tier skipped", "tier", name, "error", "aws not configured")
				continue
			}
			client, err := llm.NewBedrockClient(bedrockruntime.NewFromConfig(*awsCfg), cfg.BedrockModelID)
			if err != nil {
				logger.Warn("response tier skipped", "tier", name, "error", err)
				continue
			}
			add("bedrock", client)
		case "gemini":
			if cfg.GeminiKey == "" {
				logger.Warn("response tier skipped", "tier", name, "error", "GEMINI_API_KEY not set")
				continue
			}
			client, err := llm.NewGeminiClient(ctx, cfg.GeminiKey, cfg.GeminiModel)
			if err != nil {
				logger.Warn("response tier skipped", "tier", name, "error", err)
				continue
			}
			add("gemini", client)
			set.closers = append(set.closers, client.Close)
		case "rules":
		default:
			logger.Warn("unknown response tier ignored", "tier", name)
		}
	}

	set.Tiers = append(set.Tiers, responder.RulesTier(responder.NewRules(dir)))
	return set
}
