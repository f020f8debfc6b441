package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "LLM_TIERS", "TIER_TIMEOUT", "TURN_BUDGET", "SESSION_MAX_TURNS", "SESSION_MAX_AGE", "SESSION_SWEEP_SCHEDULE", "SESSION_BACKEND"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if !reflect.DeepEqual(cfg.LLMTiers, []string{"claude", "openai"}) {
		t.Fatalf("expected default tiers, got %v", cfg.LLMTiers)
	}
	if cfg.TierTimeout != 5*time.Second {
		t.Fatalf("expected 5s tier timeout, got %s", cfg.TierTimeout)
	}
	if cfg.TurnBudget != 12*time.Second {
		t.Fatalf("expected 12s turn budget, got %s", cfg.TurnBudget)
	}
	if cfg.SessionMaxTurns != 6 {
		t.Fatalf("expected 6 turns, got %d", cfg.SessionMaxTurns)
	}
	if cfg.SessionMaxAge != time.Hour {
		t.Fatalf("expected 1h max age, got %s", cfg.SessionMaxAge)
	}
	if cfg.SessionSweepSchedule != "@every 5m" {
		t.Fatalf("expected 5m sweep, got %s", cfg.SessionSweepSchedule)
	}
	if cfg.SessionBackend != "memory" {
		t.Fatalf("expected memory backend, got %s", cfg.SessionBackend)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_TIERS", " OpenAI , gemini,,rules ")
	t.Setenv("TIER_TIMEOUT", "2500ms")
	t.Setenv("SESSION_MAX_TURNS", "10")
	t.Setenv("SESSION_BACKEND", "Redis")
	t.Setenv("PUBLIC_BASE_URL", "https://marcel.example.com/")
	t.Setenv("REDIS_TLS", "true")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if !reflect.DeepEqual(cfg.LLMTiers, []string{"openai", "gemini", "rules"}) {
		t.Fatalf("unexpected tiers %v", cfg.LLMTiers)
	}
	if cfg.TierTimeout != 2500*time.Millisecond {
		t.Fatalf("unexpected tier timeout %s", cfg.TierTimeout)
	}
	if cfg.SessionMaxTurns != 10 {
		t.Fatalf("unexpected max turns %d", cfg.SessionMaxTurns)
	}
	if cfg.SessionBackend != "redis" {
		t.Fatalf("unexpected backend %s", cfg.SessionBackend)
	}
	if cfg.PublicBaseURL != "https://marcel.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.PublicBaseURL)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls")
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("TIER_TIMEOUT", "soon")
	t.Setenv("SESSION_MAX_TURNS", "six")
	cfg := Load()
	if cfg.TierTimeout != 5*time.Second {
		t.Fatalf("expected fallback timeout, got %s", cfg.TierTimeout)
	}
	if cfg.SessionMaxTurns != 6 {
		t.Fatalf("expected fallback turns, got %d", cfg.SessionMaxTurns)
	}
}

func TestUsesAWS(t *testing.T) {
	cfg := &Config{}
	if cfg.UsesAWS() {
		t.Fatal("empty config should not need AWS")
	}
	cfg.TranscriptBucket = "marcel-calls"
	if !cfg.UsesAWS() {
		t.Fatal("transcript bucket requires AWS")
	}
}
