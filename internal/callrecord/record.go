// Package callrecord fans finished calls out to archival and booking sinks.
package callrecord

import (
	"time"

	"github.com/wolfman30/marcel-receptionist/internal/extract"
	"github.com/wolfman30/marcel-receptionist/internal/session"
)

// Outcome is how a call ended.
type Outcome string

const (
	OutcomeBooked    Outcome = "booked"
	OutcomeAbandoned Outcome = "abandoned"
	OutcomeError     Outcome = "error"
	OutcomeNoSpeech  Outcome = "no_speech"
)

// Record describes one finished call.
type Record struct {
	CallSid     string          `json:"call_sid"`
	CallerPhone string          `json:"caller_phone,omitempty"`
	CallerName  string          `json:"caller_name,omitempty"`
	To          string          `json:"to,omitempty"`
	Salon       string          `json:"salon,omitempty"`
	Outcome     Outcome         `json:"outcome"`
	Known       extract.Context `json:"known"`
	Turns       []session.Turn  `json:"turns,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	EndedAt     time.Time       `json:"ended_at"`
}

// Booked reports whether the call ended with a confirmed appointment.
func (r Record) Booked() bool {
	return r.Outcome == OutcomeBooked
}

func (r Record) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}
