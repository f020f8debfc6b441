// Package session keeps the short conversational memory of each live call.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wolfman30/marcel-receptionist/internal/extract"
)

const (
	DefaultMaxTurns = 6
	DefaultMaxAge   = time.Hour
)

// ErrNotFound is returned when a session id is unknown or already evicted.
var ErrNotFound = errors.New("session: not found")

// Role tags who spoke a turn.
type Role string

const (
	RoleCaller Role = "caller"
	RoleSystem Role = "system"
)

// Turn is one utterance in a call.
type Turn struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Session is the bounded memory of one phone call.
type Session struct {
	ID          string          `json:"id"`
	CallerPhone string          `json:"caller_phone,omitempty"`
	Turns       []Turn          `json:"turns"`
	Known       extract.Context `json:"known"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CallerText joins the caller's turns in order.
func (s *Session) CallerText() string {
	if s == nil {
		return ""
	}
	parts := make([]string, 0, len(s.Turns))
	for _, t := range s.Turns {
		if t.Role == RoleCaller {
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, " ")
}

// Recent returns at most n of the latest turns.
func (s *Session) Recent(n int) []Turn {
	if s == nil || n <= 0 {
		return nil
	}
	if len(s.Turns) <= n {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}

// Store is the session persistence contract shared by the generator, the
// call controller and the sweeper. Implementations must be safe for
// concurrent use across calls.
type Store interface {
	GetOrCreate(ctx context.Context, id, callerPhone string) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	// AppendTurns appends turns in order as one operation and keeps only the
	// most recent MaxTurns.
	AppendTurns(ctx context.Context, id string, turns ...Turn) error
	UpdateKnown(ctx context.Context, id string, known extract.Context) error
	Delete(ctx context.Context, id string) error
	// EvictStale removes sessions created more than MaxAge before now.
	EvictStale(ctx context.Context, now time.Time) (int, error)
	Len(ctx context.Context) (int, error)
}

// Options tunes a Store. Zero values fall back to the defaults.
type Options struct {
	MaxTurns int
	MaxAge   time.Duration
	Now      func() time.Time
}

func (o Options) withDefaults() Options {
	if o.MaxTurns <= 0 {
		o.MaxTurns = DefaultMaxTurns
	}
	if o.MaxAge <= 0 {
		o.MaxAge = DefaultMaxAge
	}
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	return o
}

func stampTurns(turns []Turn, now time.Time) []Turn {
	out := make([]Turn, len(turns))
	for i, t := range turns {
		if t.At.IsZero() {
			t.At = now
		}
		out[i] = t
	}
	return out
}

func trimTurns(turns []Turn, max int) []Turn {
	if len(turns) <= max {
		return turns
	}
	kept := make([]Turn, max)
	copy(kept, turns[len(turns)-max:])
	return kept
}
