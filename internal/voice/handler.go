// Package voice drives a phone call through Twilio webhooks. Each webhook
// answers with TwiML that either gathers more speech or hangs up.
package voice

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/marcel-receptionist/internal/callrecord"
	"github.com/wolfman30/marcel-receptionist/internal/directory"
	"github.com/wolfman30/marcel-receptionist/internal/responder"
	"github.com/wolfman30/marcel-receptionist/internal/session"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

const (
	DefaultVoice         = "Polly.Liam-Neural"
	DefaultLanguage      = "fr-CA"
	DefaultGatherTimeout = 5 * time.Second

	technicalApology = "Désolé, nous éprouvons des difficultés techniques. Veuillez rappeler dans quelques instants. Au revoir."
	noSpeechApology  = "Désolé, je n'ai rien entendu. N'hésitez pas à rappeler. Au revoir!"
	silenceApology   = "Désolé, je ne vous entends plus. Au revoir!"
)

// Generator produces the reply for one utterance.
type Generator interface {
	Generate(ctx context.Context, utterance, sessionID, phone string) (responder.Reply, error)
}

// Recorder receives a record for every call that ends.
type Recorder interface {
	Dispatch(rec callrecord.Record)
}

// Observer records call outcomes and webhook latency.
type Observer interface {
	ObserveCallOutcome(outcome string)
	ObserveWebhookLatency(route string, seconds float64)
}

type Config struct {
	Generator     Generator
	Sessions      session.Store
	Directory     *directory.Directory
	Recorder      Recorder
	Observer      Observer
	Logger        *logging.Logger
	Voice         string
	Language      string
	GatherTimeout time.Duration
	// ActionURL is where Gather posts the caller's speech.
	ActionURL string
	// AuthToken enables X-Twilio-Signature validation when set.
	AuthToken string
	// PublicBaseURL is the externally visible origin used to validate
	// signatures behind a proxy.
	PublicBaseURL string
	// Rand picks a closing remark; it returns a value in [0, n).
	Rand func(n int) int
	Now  func() time.Time
}

// Handler serves the call webhooks.
type Handler struct {
	gen       Generator
	sessions  session.Store
	dir       *directory.Directory
	recorder  Recorder
	observer  Observer
	logger    *logging.Logger
	voice     string
	language  string
	timeout   int
	action    string
	authToken string
	baseURL   string
	rand      func(int) int
	now       func() time.Time
	tracer    trace.Tracer
}

func NewHandler(cfg Config) (*Handler, error) {
	if cfg.Generator == nil {
		return nil, errors.New("voice: generator is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("voice: session store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.GatherTimeout <= 0 {
		cfg.GatherTimeout = DefaultGatherTimeout
	}
	if cfg.ActionURL == "" {
		cfg.ActionURL = "/voice"
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Intn
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	timeout := int(cfg.GatherTimeout.Round(time.Second) / time.Second)
	if timeout < 1 {
		timeout = 1
	}
	return &Handler{
		gen:       cfg.Generator,
		sessions:  cfg.Sessions,
		dir:       cfg.Directory,
		recorder:  cfg.Recorder,
		observer:  cfg.Observer,
		logger:    cfg.Logger,
		voice:     cfg.Voice,
		language:  cfg.Language,
		timeout:   timeout,
		action:    cfg.ActionURL,
		authToken: cfg.AuthToken,
		baseURL:   strings.TrimRight(cfg.PublicBaseURL, "/"),
		rand:      cfg.Rand,
		now:       cfg.Now,
		tracer:    otel.Tracer("marcel.internal.voice"),
	}, nil
}

type inboundCall struct {
	CallSid    string
	From       string
	To         string
	Speech     string
	Confidence float64
	Status     string
}

// SessionID is the session key for a Twilio call.
func SessionID(callSid string) string {
	return "call:" + callSid
}

// Inbound handles POST /voice, both the first ring and every gathered
// utterance.
func (h *Handler) Inbound(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { h.observeLatency("voice", start) }()

	call, ok := h.parse(w, r)
	if !ok {
		return
	}
	logger := h.logger.ForCall(call.CallSid, call.From)
	ctx, span := h.tracer.Start(r.Context(), "voice.inbound", trace.WithAttributes(
		attribute.String("call.sid", call.CallSid),
		attribute.Bool("call.speech", call.Speech != ""),
	))
	defer span.End()

	resp := h.respond(ctx, call, logger)
	if err := writeTwiML(w, resp); err != nil {
		logger.Error("failed to write twiml", "error", err)
	}
}

// respond picks exactly one of: greet and gather, reply and gather, close
// and hang up, apologize and hang up.
func (h *Handler) respond(ctx context.Context, call inboundCall, logger *logging.Logger) (resp Response) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("voice handler panicked", "panic", rec)
			resp = h.fail(ctx, call, logger, fmt.Errorf("panic: %v", rec))
		}
	}()

	if strings.TrimSpace(call.Speech) == "" {
		return h.greet(ctx, call, logger)
	}

	logger.Info("caller speech received", "chars", len(call.Speech), "confidence", call.Confidence)
	reply, err := h.gen.Generate(ctx, call.Speech, SessionID(call.CallSid), call.From)
	if err != nil {
		return h.fail(ctx, call, logger, err)
	}
	logger.Info("reply generated", "tier", reply.Tier, "known_slots", len(reply.Known.Known()), "identity_confirmed", reply.IdentityConfirmed)

	if ShouldConclude(reply) {
		return h.conclude(ctx, call, reply, logger)
	}
	return Response{Verbs: []any{
		h.gather(reply.Text),
		h.say(silenceApology),
		Hangup{},
	}}
}

func (h *Handler) greet(ctx context.Context, call inboundCall, logger *logging.Logger) Response {
	// The session starts with the call so a caller who never speaks is
	// still recorded.
	if _, err := h.sessions.GetOrCreate(ctx, SessionID(call.CallSid), call.From); err != nil {
		logger.Warn("failed to open session", "error", err)
	}
	_, known := h.dir.LookupCaller(call.From)
	logger.Info("call answered", "known_caller", known)
	return Response{Verbs: []any{
		h.gather(h.greeting(known)),
		h.say(noSpeechApology),
		Hangup{},
	}}
}

func (h *Handler) greeting(knownCaller bool) string {
	if knownCaller {
		return "Bonjour et bon retour chez Marcel! À qui ai-je le plaisir de parler?"
	}
	return responder.Welcome(h.dir.Salons())
}

func (h *Handler) conclude(ctx context.Context, call inboundCall, reply responder.Reply, logger *logging.Logger) Response {
	closing := closingRemarks[h.rand(len(closingRemarks))]
	logger.Info("call concluded", "service", reply.Known.Service, "barber", reply.Known.Barber)
	h.end(ctx, call, callrecord.OutcomeBooked, logger)
	return Response{Verbs: []any{
		h.say(reply.Text + " " + closing),
		Pause{Length: 1},
		Hangup{},
	}}
}

func (h *Handler) fail(ctx context.Context, call inboundCall, logger *logging.Logger, err error) Response {
	logger.Error("call failed", "error", err)
	h.end(ctx, call, callrecord.OutcomeError, logger)
	return Response{Verbs: []any{
		h.say(technicalApology),
		Hangup{},
	}}
}

// end records the call and drops its session. A call that has already
// ended has no session left, so it is never recorded twice.
func (h *Handler) end(ctx context.Context, call inboundCall, outcome callrecord.Outcome, logger *logging.Logger) bool {
	id := SessionID(call.CallSid)
	sess, err := h.sessions.Get(ctx, id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		if outcome == callrecord.OutcomeAbandoned {
			return false
		}
	case err != nil:
		logger.Warn("failed to load session for call record", "error", err)
	}
	if err != nil {
		sess = nil
	}
	if sess != nil && outcome == callrecord.OutcomeAbandoned && len(callerTurns(sess)) == 0 {
		outcome = callrecord.OutcomeNoSpeech
	}
	if err := h.sessions.Delete(ctx, id); err != nil {
		logger.Warn("failed to delete session", "error", err)
	}

	rec := callrecord.Record{
		CallSid:     call.CallSid,
		CallerPhone: call.From,
		To:          call.To,
		Outcome:     outcome,
		EndedAt:     h.now(),
	}
	if c, ok := h.dir.LookupCaller(call.From); ok {
		rec.CallerName = c.Name
	}
	if sess != nil {
		rec.Known = sess.Known
		rec.Salon = sess.Known.Salon
		rec.Turns = sess.Turns
		rec.StartedAt = sess.CreatedAt
	}
	if h.recorder != nil {
		h.recorder.Dispatch(rec)
	}
	if h.observer != nil {
		h.observer.ObserveCallOutcome(string(outcome))
	}
	return true
}

// Status handles POST /voice/status, Twilio's call status callback. A call
// that ends while Marcel is still gathering is recorded as abandoned.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { h.observeLatency("voice_status", start) }()

	call, ok := h.parse(w, r)
	if !ok {
		return
	}
	logger := h.logger.ForCall(call.CallSid, call.From)
	ctx, span := h.tracer.Start(r.Context(), "voice.status", trace.WithAttributes(
		attribute.String("call.sid", call.CallSid),
		attribute.String("call.status", call.Status),
	))
	defer span.End()

	switch call.Status {
	case "completed", "failed", "no-answer", "busy", "canceled":
		if h.end(ctx, call, callrecord.OutcomeAbandoned, logger) {
			logger.Info("call ended before conclusion", "status", call.Status)
		}
	default:
		logger.Debug("call status", "status", call.Status)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request) (inboundCall, bool) {
	if h.authToken != "" && !ValidateSignature(r, h.authToken, h.publicURL(r)) {
		h.logger.Warn("rejected webhook with invalid signature", "path", r.URL.Path)
		http.Error(w, "invalid signature", http.StatusForbidden)
		return inboundCall{}, false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return inboundCall{}, false
	}
	call := inboundCall{
		CallSid: strings.TrimSpace(r.PostFormValue("CallSid")),
		From:    strings.TrimSpace(r.PostFormValue("From")),
		To:      strings.TrimSpace(r.PostFormValue("To")),
		Speech:  strings.TrimSpace(r.PostFormValue("SpeechResult")),
		Status:  strings.TrimSpace(r.PostFormValue("CallStatus")),
	}
	if c := r.PostFormValue("Confidence"); c != "" {
		call.Confidence, _ = strconv.ParseFloat(c, 64)
	}
	if call.CallSid == "" {
		http.Error(w, "missing CallSid", http.StatusBadRequest)
		return inboundCall{}, false
	}
	return call, true
}

func (h *Handler) publicURL(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL + r.URL.RequestURI()
	}
	scheme := "https"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS == nil {
		scheme = "http"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

func (h *Handler) say(text string) Say {
	return Say{Voice: h.voice, Language: h.language, Text: text}
}

func (h *Handler) gather(text string) Gather {
	return Gather{
		Input:         "speech",
		Action:        h.action,
		Method:        http.MethodPost,
		Language:      h.language,
		Timeout:       h.timeout,
		SpeechTimeout: "auto",
		Says:          []Say{h.say(text)},
	}
}

func (h *Handler) observeLatency(route string, start time.Time) {
	if h.observer != nil {
		h.observer.ObserveWebhookLatency(route, time.Since(start).Seconds())
	}
}

func callerTurns(s *session.Session) []session.Turn {
	var out []session.Turn
	for _, t := range s.Turns {
		if t.Role == session.RoleCaller {
			out = append(out, t)
		}
	}
	return out
}
