// Package bootstrap assembles the Marcel service from configuration. The
// HTTP server, the Lambda handler and the simulator all start here.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/marcel-receptionist/internal/api/router"
	"github.com/wolfman30/marcel-receptionist/internal/callrecord"
	appconfig "github.com/wolfman30/marcel-receptionist/internal/config"
	"github.com/wolfman30/marcel-receptionist/internal/directory"
	"github.com/wolfman30/marcel-receptionist/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/marcel-receptionist/internal/http/middleware"
	"github.com/wolfman30/marcel-receptionist/internal/observability/metrics"
	"github.com/wolfman30/marcel-receptionist/internal/responder"
	"github.com/wolfman30/marcel-receptionist/internal/session"
	"github.com/wolfman30/marcel-receptionist/internal/voice"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

// Test console budget: one message every two seconds per client, bursts of 5.
const (
	testRatePerSecond = 0.5
	testRateBurst     = 5
)

// Options carries what the entrypoint owns.
type Options struct {
	Logger *logging.Logger
	// AWS is nil when no AWS-backed component is configured.
	AWS *aws.Config
	// Registry defaults to the global Prometheus registry.
	Registry *prometheus.Registry
}

// App is the wired service.
type App struct {
	Config     *appconfig.Config
	Logger     *logging.Logger
	Handler    http.Handler
	Generator  *responder.Generator
	Sessions   session.Store
	Directory  *directory.Directory
	Dispatcher *callrecord.Dispatcher
	Sweeper    *session.Sweeper
	Metrics    *metrics.VoiceMetrics

	tiers *TierSet
	redis *redis.Client
}

// Build wires every component but starts nothing.
func Build(ctx context.Context, cfg *appconfig.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		metricsHTTP                      = promhttp.Handler()
	)
	if opts.Registry != nil {
		registerer = opts.Registry
		metricsHTTP = promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})
	}
	m := metrics.NewVoiceMetrics(registerer)

	dir, err := BuildDirectory(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	sessions, redisClient, err := BuildSessionStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	tiers := BuildTiers(ctx, cfg, opts.AWS, dir, logger)

	gen, err := responder.New(responder.Config{
		Sessions:    sessions,
		Directory:   dir,
		Tiers:       tiers.Tiers,
		TierTimeout: cfg.TierTimeout,
		TurnBudget:  cfg.TurnBudget,
		Observer:    m,
		Logger:      logger,
	})
	if err != nil {
		tiers.Close()
		return nil, err
	}

	dispatcher := callrecord.NewDispatcher(logger, m, callrecord.DefaultSinkTimeout, BuildSinks(cfg, opts.AWS, dir, logger)...)
	logger.Info("call record sinks", "sinks", dispatcher.Sinks())

	voiceHandler, err := voice.NewHandler(voice.Config{
		Generator:     gen,
		Sessions:      sessions,
		Directory:     dir,
		Recorder:      dispatcher,
		Observer:      m,
		Logger:        logger,
		Voice:         cfg.VoiceName,
		Language:      cfg.VoiceLanguage,
		GatherTimeout: cfg.GatherTimeout,
		AuthToken:     cfg.TwilioAuthToken,
		PublicBaseURL: cfg.PublicBaseURL,
	})
	if err != nil {
		tiers.Close()
		return nil, err
	}
	if cfg.TwilioAuthToken == "" {
		logger.Warn("TWILIO_AUTH_TOKEN not set; webhook signatures are not verified")
	}

	handler := router.New(&router.Config{
		Logger:         logger,
		Voice:          voiceHandler,
		TestChat:       handlers.NewTestChatHandler(gen, logger),
		Health:         handlers.NewHealthHandler(gen.TierNames(), tiers.ClaudeConfigured, sessions, logger),
		AdminSessions:  handlers.NewAdminSessionsHandler(sessions, logger),
		AdminSecret:    cfg.AdminJWTSecret,
		MetricsHandler: metricsHTTP,
		TestRateLimit:  httpmiddleware.NewRateLimiter(testRatePerSecond, testRateBurst),

		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	return &App{
		Config:     cfg,
		Logger:     logger,
		Handler:    handler,
		Generator:  gen,
		Sessions:   sessions,
		Directory:  dir,
		Dispatcher: dispatcher,
		Sweeper:    session.NewSweeper(sessions, cfg.SessionSweepSchedule, m, logger),
		Metrics:    m,
		tiers:      tiers,
		redis:      redisClient,
	}, nil
}

// Start launches background jobs. They stop when ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	return a.Sweeper.Start(ctx)
}

// Close stops background jobs, waits for pending call records and releases
// clients.
func (a *App) Close() {
	a.Sweeper.Stop()
	a.Dispatcher.Wait()
	a.tiers.Close()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Logger.Warn("failed to close redis", "error", err)
		}
	}
}
