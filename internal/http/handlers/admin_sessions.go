package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/marcel-receptionist/internal/extract"
	"github.com/wolfman30/marcel-receptionist/internal/session"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

// AdminSessionsHandler exposes live call sessions to operators.
type AdminSessionsHandler struct {
	sessions session.Store
	logger   *logging.Logger
}

func NewAdminSessionsHandler(sessions session.Store, logger *logging.Logger) *AdminSessionsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminSessionsHandler{sessions: sessions, logger: logger}
}

type SessionView struct {
	ID          string          `json:"id"`
	CallerPhone string          `json:"caller_phone,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Turns       []session.Turn  `json:"turns"`
	Known       extract.Context `json:"known"`
	NextMissing extract.Slot    `json:"next_missing,omitempty"`
	Complete    bool            `json:"complete"`
}

// Get handles GET /admin/sessions/{id}.
func (h *AdminSessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := h.sessions.Get(r.Context(), id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
		return
	case err != nil:
		h.logger.Error("admin: load session", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	turns := sess.Turns
	if turns == nil {
		turns = []session.Turn{}
	}
	writeJSON(w, http.StatusOK, SessionView{
		ID:          sess.ID,
		CallerPhone: sess.CallerPhone,
		CreatedAt:   sess.CreatedAt,
		Turns:       turns,
		Known:       sess.Known,
		NextMissing: sess.Known.NextMissing(),
		Complete:    sess.Known.Complete(),
	})
}

// Delete handles DELETE /admin/sessions/{id}.
func (h *AdminSessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.Delete(r.Context(), id); err != nil {
		h.logger.Error("admin: delete session", "session_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	h.logger.Info("admin: session deleted", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}
