package handlers

import (
	"net/http"
	"time"

	"github.com/wolfman30/marcel-receptionist/internal/session"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

// HealthHandler reports liveness plus which response tiers are wired.
type HealthHandler struct {
	started          time.Time
	tiers            []string
	claudeConfigured bool
	sessions         session.Store
	logger           *logging.Logger
	now              func() time.Time
}

func NewHealthHandler(tiers []string, claudeConfigured bool, sessions session.Store, logger *logging.Logger) *HealthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &HealthHandler{
		started:          time.Now(),
		tiers:            append([]string(nil), tiers...),
		claudeConfigured: claudeConfigured,
		sessions:         sessions,
		logger:           logger,
		now:              time.Now,
	}
}

type HealthResponse struct {
	Status           string   `json:"status"`
	UptimeSeconds    int64    `json:"uptime_seconds"`
	ClaudeConfigured bool     `json:"claude_configured"`
	Tiers            []string `json:"tiers"`
	ActiveSessions   *int     `json:"active_sessions,omitempty"`
}

// Health handles GET /health. A session store that cannot answer makes the
// service unhealthy since no call could be served.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:           "ok",
		UptimeSeconds:    int64(h.now().Sub(h.started).Seconds()),
		ClaudeConfigured: h.claudeConfigured,
		Tiers:            h.tiers,
	}
	status := http.StatusOK
	if h.sessions != nil {
		n, err := h.sessions.Len(r.Context())
		if err != nil {
			h.logger.Warn("health: session store unavailable", "error", err)
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		} else {
			resp.ActiveSessions = &n
		}
	}
	writeJSON(w, status, resp)
}
