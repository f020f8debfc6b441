// Package responder turns one caller utterance into the next spoken reply.
//
// A reply comes from the first tier of an ordered fallback chain that
// answers in time: hosted language models first, a deterministic rule engine
// last. Only the winning tier updates the session.
package responder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/marcel-receptionist/internal/directory"
	"github.com/wolfman30/marcel-receptionist/internal/extract"
	"github.com/wolfman30/marcel-receptionist/internal/session"
	"github.com/wolfman30/marcel-receptionist/internal/textutil"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

// ErrNoResponse means no reply could be produced for the turn.
var ErrNoResponse = errors.New("responder: no response available")

const defaultHistoryTurns = 6

// Tier outcomes reported to the observer.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
	OutcomeEmpty   = "empty"
	OutcomeBlocked = "blocked"
	OutcomeSkipped = "skipped"
)

// DefaultTurnBudget bounds a whole turn. It stays under the 15s Twilio
// allows a webhook to answer.
const DefaultTurnBudget = 12 * time.Second

// TierObserver records the outcome and latency of each tier attempt.
type TierObserver interface {
	ObserveTier(tier, outcome string, seconds float64)
}

// Reply is the outcome of one successful turn.
type Reply struct {
	Text              string
	Tier              string
	Known             extract.Context
	Caller            *directory.Caller
	IdentityConfirmed bool
}

type Config struct {
	Sessions  session.Store
	Directory *directory.Directory
	Extractor *extract.Extractor
	// Tiers are tried in order. When empty, the rule engine alone answers.
	Tiers       []Tier
	TierTimeout time.Duration
	// TurnBudget is shared by every tier but the last, which always gets its
	// full TierTimeout.
	TurnBudget   time.Duration
	HistoryTurns int
	Observer     TierObserver
	Logger       *logging.Logger
}

// Generator produces replies and keeps the session in step with them.
type Generator struct {
	sessions  session.Store
	dir       *directory.Directory
	extractor *extract.Extractor
	tiers     []Tier
	timeout   time.Duration
	budget    time.Duration
	history   int
	observer  TierObserver
	logger    *logging.Logger
	tracer    trace.Tracer
}

func New(cfg Config) (*Generator, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("responder: session store is required")
	}
	if cfg.Extractor == nil {
		cfg.Extractor = extract.New(cfg.Directory)
	}
	if len(cfg.Tiers) == 0 {
		cfg.Tiers = []Tier{RulesTier(NewRules(cfg.Directory))}
	}
	for i, t := range cfg.Tiers {
		if t.Strategy == nil {
			return nil, fmt.Errorf("responder: tier %d (%s) has no strategy", i, t.Name)
		}
	}
	if cfg.TierTimeout <= 0 {
		cfg.TierTimeout = DefaultTierTimeout
	}
	if cfg.TurnBudget <= 0 {
		cfg.TurnBudget = DefaultTurnBudget
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = defaultHistoryTurns
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Generator{
		sessions:  cfg.Sessions,
		dir:       cfg.Directory,
		extractor: cfg.Extractor,
		tiers:     append([]Tier(nil), cfg.Tiers...),
		timeout:   cfg.TierTimeout,
		budget:    cfg.TurnBudget,
		history:   cfg.HistoryTurns,
		observer:  cfg.Observer,
		logger:    cfg.Logger,
		tracer:    otel.Tracer("marcel.internal.responder"),
	}, nil
}

// TierNames lists the configured tiers in fallback order.
func (g *Generator) TierNames() []string {
	out := make([]string, len(g.tiers))
	for i, t := range g.tiers {
		out[i] = t.Name
	}
	return out
}

// Generate answers one utterance. The only error it returns is
// ErrNoResponse, possibly wrapped with the underlying cause.
func (g *Generator) Generate(ctx context.Context, utterance, sessionID, phone string) (Reply, error) {
	ctx, span := g.tracer.Start(ctx, "responder.generate", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
	defer span.End()

	utterance = strings.TrimSpace(utterance)
	sess, err := g.sessions.GetOrCreate(ctx, sessionID, phone)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "session unavailable")
		g.logger.Error("session unavailable", "session_id", sessionID, "error", err)
		return Reply{}, fmt.Errorf("%w: %v", ErrNoResponse, err)
	}

	var caller *directory.Caller
	if c, ok := g.dir.LookupCaller(phone); ok {
		caller = &c
	}

	current := g.extractor.Extract(utterance)
	accumulated := g.extractor.Extract(strings.TrimSpace(sess.CallerText() + " " + utterance))
	known := sess.Known.Merge(accumulated).Merge(current)
	// A confirmed name is never replaced by a later match.
	if sess.Known.ClientName != "" && IdentityConfirmed(caller, sess.Known) {
		known.ClientName = sess.Known.ClientName
	}
	confirmed := IdentityConfirmed(caller, known)

	p := Prompt{
		Utterance:         utterance,
		Current:           current,
		Known:             known,
		Caller:            caller,
		IdentityConfirmed: confirmed,
		History:           historyFor(sess, g.history),
		Salons:            g.dir.Salons(),
	}

	deadline := time.Now().Add(g.budget)
	for i, tier := range g.tiers {
		timeout := g.timeout
		if i < len(g.tiers)-1 {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				g.skip(tier)
				continue
			}
			timeout = min(timeout, remaining)
		}
		text, ok := g.try(ctx, tier, p, timeout)
		if !ok {
			continue
		}
		span.SetAttributes(attribute.String("responder.tier", tier.Name))

		turns := []session.Turn{{Role: session.RoleSystem, Text: text}}
		if utterance != "" {
			turns = append([]session.Turn{{Role: session.RoleCaller, Text: utterance}}, turns...)
		}
		if err := g.sessions.AppendTurns(ctx, sessionID, turns...); err != nil {
			g.logger.Warn("append turns failed", "session_id", sessionID, "error", err)
		}
		if err := g.sessions.UpdateKnown(ctx, sessionID, known); err != nil {
			g.logger.Warn("update known slots failed", "session_id", sessionID, "error", err)
		}
		return Reply{
			Text:              text,
			Tier:              tier.Name,
			Known:             known,
			Caller:            caller,
			IdentityConfirmed: confirmed,
		}, nil
	}

	span.SetStatus(codes.Error, "all tiers failed")
	g.logger.Error("all response tiers failed", "session_id", sessionID, "tiers", len(g.tiers))
	return Reply{}, ErrNoResponse
}

// try runs one tier and reports whether it produced a speakable reply.
func (g *Generator) try(ctx context.Context, tier Tier, p Prompt, timeout time.Duration) (string, bool) {
	ctx, span := g.tracer.Start(ctx, "responder.tier", trace.WithAttributes(attribute.String("tier", tier.Name)))
	defer span.End()

	start := time.Now()
	text, err := race(ctx, tier, p, timeout)
	elapsed := time.Since(start).Seconds()

	outcome := OutcomeSuccess
	switch {
	case errors.Is(err, errTierTimeout):
		outcome = OutcomeTimeout
	case err != nil:
		outcome = OutcomeError
	case tier.Sanitize:
		text = Sanitize(text)
		if guard := GuardReply(text); guard.Blocked {
			outcome = OutcomeBlocked
			span.SetAttributes(attribute.StringSlice("guard.reasons", guard.Reasons))
		}
	default:
		text = strings.TrimSpace(text)
	}
	if outcome == OutcomeSuccess && text == "" {
		outcome = OutcomeEmpty
	}

	if g.observer != nil {
		g.observer.ObserveTier(tier.Name, outcome, elapsed)
	}
	span.SetAttributes(attribute.String("tier.outcome", outcome))
	if outcome != OutcomeSuccess {
		if err != nil {
			span.RecordError(err)
		}
		g.logger.Warn("response tier failed", "tier", tier.Name, "outcome", outcome, "elapsed_s", elapsed, "error", err)
		return "", false
	}
	g.logger.Debug("response tier answered", "tier", tier.Name, "elapsed_s", elapsed)
	return text, true
}

// skip records a tier left out because the turn budget ran out.
func (g *Generator) skip(tier Tier) {
	if g.observer != nil {
		g.observer.ObserveTier(tier.Name, OutcomeSkipped, 0)
	}
	g.logger.Warn("response tier skipped", "tier", tier.Name, "budget", g.budget)
}

// IdentityConfirmed reports whether personal details may be used. An unknown
// number has nothing to protect. A known number is confirmed once the caller
// gives the first name on file.
func IdentityConfirmed(caller *directory.Caller, known extract.Context) bool {
	if caller == nil {
		return true
	}
	first := caller.FirstName()
	name := firstWord(known.ClientName)
	if first == "" || name == "" {
		return false
	}
	return textutil.Fold(first) == textutil.Fold(name)
}
