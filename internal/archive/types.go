package archive

import "time"

const transcriptVersion = "1.0"

// Transcript is the JSON document stored for every finished call. Phone
// numbers are hashed and free text is scrubbed before upload.
type Transcript struct {
	Version         string    `json:"version"`
	CallSid         string    `json:"call_sid"`
	PhoneHash       string    `json:"phone_hash,omitempty"`
	KnownCaller     bool      `json:"known_caller"`
	Outcome         string    `json:"outcome"`
	Salon           string    `json:"salon,omitempty"`
	Booking         Booking   `json:"booking"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	ArchivedAt      time.Time `json:"archived_at"`
	DurationSeconds int       `json:"duration_seconds"`
	TurnCount       int       `json:"turn_count"`
	Turns           []Turn    `json:"turns"`
}

// Booking is the slot state at hang-up.
type Booking struct {
	Service string `json:"service,omitempty"`
	Price   string `json:"price,omitempty"`
	Date    string `json:"date,omitempty"`
	Time    string `json:"time,omitempty"`
	Barber  string `json:"barber,omitempty"`
}

// Turn is one spoken line.
type Turn struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// ManifestEntry is one JSONL line in the monthly manifest file.
type ManifestEntry struct {
	CallSid    string `json:"call_sid"`
	S3Key      string `json:"s3_key"`
	Outcome    string `json:"outcome"`
	Salon      string `json:"salon,omitempty"`
	ArchivedAt string `json:"archived_at"`
	TurnCount  int    `json:"turn_count"`
}
