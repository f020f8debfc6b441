package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/marcel-receptionist/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/marcel-receptionist/internal/http/middleware"
	"github.com/wolfman30/marcel-receptionist/internal/voice"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

// Config holds router configuration. Nil handlers leave their routes
// unmounted.
type Config struct {
	Logger         *logging.Logger
	Voice          *voice.Handler
	TestChat       *handlers.TestChatHandler
	Health         *handlers.HealthHandler
	AdminSessions  *handlers.AdminSessionsHandler
	AdminSecret    string
	MetricsHandler http.Handler
	// TestRateLimit caps POST /test per client, since every message may
	// reach a paid model. Nil disables the cap.
	TestRateLimit      *httpmiddleware.RateLimiter
	CORSAllowedOrigins []string
}

// New creates the chi router with every route configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	if cfg.Health != nil {
		r.Get("/health", cfg.Health.Health)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.Voice != nil {
		r.Route("/voice", func(v chi.Router) {
			v.Post("/", cfg.Voice.Inbound)
			v.Post("/status", cfg.Voice.Status)
		})
	}

	if cfg.TestChat != nil {
		r.Group(func(test chi.Router) {
			if len(cfg.CORSAllowedOrigins) > 0 {
				test.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
			}
			if cfg.TestRateLimit != nil {
				test.Use(httpmiddleware.RateLimit(cfg.TestRateLimit))
			}
			test.Post("/test", cfg.TestChat.Chat)
			test.Options("/test", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
		})
	}

	if cfg.AdminSessions != nil && cfg.AdminSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminSecret, cfg.Logger))
			admin.Get("/sessions/{id}", cfg.AdminSessions.Get)
			admin.Delete("/sessions/{id}", cfg.AdminSessions.Delete)
		})
	}

	return r
}
