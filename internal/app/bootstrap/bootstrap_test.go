package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/marcel-receptionist/internal/config"
	"github.com/wolfman30/marcel-receptionist/internal/directory"
	"github.com/wolfman30/marcel-receptionist/internal/session"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

func baseConfig() *appconfig.Config {
	return &appconfig.Config{
		LLMTiers:             []string{"claude", "openai", "gemini", "bedrock", "mystery"},
		TierTimeout:          time.Second,
		LLMMaxTokens:         200,
		SessionBackend:       "memory",
		SessionMaxTurns:      6,
		SessionMaxAge:        time.Hour,
		SessionSweepSchedule: "@every 5m",
		GatherTimeout:        5 * time.Second,
	}
}

func TestBuildFallsBackToRules(t *testing.T) {
	app, err := Build(context.Background(), baseConfig(), Options{Logger: logging.Discard(), Registry: prometheus.NewRegistry()})
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, []string{"rules"}, app.Generator.TierNames())
	assert.Equal(t, []string{"log"}, app.Dispatcher.Sinks())
	assert.Len(t, app.Directory.Salons(), 3)

	rec := httptest.NewRecorder()
	app.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	assert.Equal(t, false, health["claude_configured"])

	rec = httptest.NewRecorder()
	app.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"message":"Bonjour"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBuildTiersHonoursOrderAndCredentials(t *testing.T) {
	cfg := baseConfig()
	cfg.LLMTiers = []string{"openai", "claude", "rules"}
	cfg.AnthropicKey = "sk-ant-test"
	cfg.OpenAIKey = "sk-test"

	set := BuildTiers(context.Background(), cfg, nil, directory.Seed(), logging.Discard())
	defer set.Close()

	var got []string
	for _, tier := range set.Tiers {
		got = append(got, tier.Name)
	}
	assert.Equal(t, []string{"openai", "claude", "rules"}, got)
	assert.True(t, set.ClaudeConfigured)
	assert.True(t, set.Tiers[0].Sanitize)
	assert.False(t, set.Tiers[2].Sanitize)
}

func TestBuildSessionStore(t *testing.T) {
	ctx := context.Background()
	cfg := baseConfig()

	store, client, err := BuildSessionStore(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.IsType(t, &session.MemoryStore{}, store)

	mr := miniredis.RunT(t)
	cfg.SessionBackend = "redis"
	cfg.RedisAddr = mr.Addr()
	store, client, err = BuildSessionStore(ctx, cfg, logging.Discard())
	require.NoError(t, err)
	require.NotNil(t, client)
	defer client.Close()
	assert.IsType(t, &session.RedisStore{}, store)

	mr.Close()
	_, _, err = BuildSessionStore(ctx, cfg, logging.Discard())
	assert.Error(t, err)

	cfg.SessionBackend = "dynamo"
	_, _, err = BuildSessionStore(ctx, cfg, logging.Discard())
	assert.Error(t, err)
}

func TestBuildDirectoryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
salons:
  - id: verdun
    name: Barbier Verdun
    barbiers:
      - name: Luc
        specialty: coupe homme
        price: 28 $
`), 0o600))
	cfg := baseConfig()
	cfg.DirectoryFile = path

	dir, err := BuildDirectory(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	require.Len(t, dir.Salons(), 1)
	assert.Equal(t, "Barbier Verdun", dir.Salons()[0].Name)

	cfg.DirectoryFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = BuildDirectory(context.Background(), cfg, logging.Discard())
	assert.Error(t, err)
}

func TestBuildSinks(t *testing.T) {
	cfg := baseConfig()
	cfg.TranscriptBucket = "marcel-transcripts"
	cfg.CallLogTable = "marcel-calls"
	cfg.BookingQueueURL = "https://sqs.ca-central-1.amazonaws.com/123/bookings"
	cfg.NotifyFromEmail = "marcel@barbiermarcel.ca"
	cfg.SendGridAPIKey = "SG.test"
	awsCfg := aws.Config{Region: "ca-central-1"}

	var got []string
	for _, s := range BuildSinks(cfg, &awsCfg, directory.Seed(), logging.Discard()) {
		got = append(got, s.Name())
	}
	assert.Equal(t, []string{"log", "s3", "dynamodb", "sqs", "email"}, got)

	got = got[:0]
	for _, s := range BuildSinks(cfg, nil, directory.Seed(), logging.Discard()) {
		got = append(got, s.Name())
	}
	assert.Equal(t, []string{"log", "email"}, got, "aws sinks need aws config")

	cfg.SendGridAPIKey = ""
	assert.Len(t, BuildSinks(cfg, nil, directory.Seed(), logging.Discard()), 1)

	cfg.Env = "development"
	sinks := BuildSinks(cfg, nil, directory.Seed(), logging.Discard())
	require.Len(t, sinks, 2, "development logs booking emails without a provider")
	assert.Equal(t, "email", sinks[1].Name())
}
