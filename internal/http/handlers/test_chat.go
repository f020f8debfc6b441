package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/wolfman30/marcel-receptionist/internal/extract"
	"github.com/wolfman30/marcel-receptionist/internal/responder"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

const maxTestBody = 16 << 10

// Generator produces Marcel's reply to one utterance.
type Generator interface {
	Generate(ctx context.Context, utterance, sessionID, phone string) (responder.Reply, error)
}

// TestChatHandler lets a developer talk to Marcel over JSON instead of a
// phone line. It drives the same generator as the voice webhook.
type TestChatHandler struct {
	gen    Generator
	logger *logging.Logger
}

func NewTestChatHandler(gen Generator, logger *logging.Logger) *TestChatHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &TestChatHandler{gen: gen, logger: logger}
}

type TestChatRequest struct {
	Message     string `json:"message"`
	SessionID   string `json:"sessionId"`
	PhoneNumber string `json:"phoneNumber"`
}

type TestChatResponse struct {
	Response          string          `json:"response"`
	SessionID         string          `json:"sessionId"`
	Tier              string          `json:"tier"`
	Known             extract.Context `json:"known"`
	IdentityConfirmed bool            `json:"identityConfirmed"`
}

// Chat handles POST /test.
func (h *TestChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req TestChatRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxTestBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		req.SessionID = "test:" + uuid.NewString()
	}

	reply, err := h.gen.Generate(r.Context(), req.Message, req.SessionID, req.PhoneNumber)
	if err != nil {
		h.logger.Error("test chat failed", "session_id", req.SessionID, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, responder.ErrNoResponse) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, "no response available")
		return
	}
	writeJSON(w, http.StatusOK, TestChatResponse{
		Response:          reply.Text,
		SessionID:         req.SessionID,
		Tier:              reply.Tier,
		Known:             reply.Known,
		IdentityConfirmed: reply.IdentityConfirmed,
	})
}
