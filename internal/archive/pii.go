package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"

	"github.com/wolfman30/marcel-receptionist/internal/directory"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	// North American numbers as callers dictate them: "514 555 1234",
	// "(438) 555-9012", "+1 514-555-1234".
	phoneRe = regexp.MustCompile(`(?:\+?1[-.\s]?)?\(?[2-9][0-9]{2}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}\b`)
)

// HashPhone hashes the E.164 form of a number, so one caller maps to one
// hash whatever format the carrier used.
func HashPhone(phone string) string {
	normalized := directory.NormalizeE164(phone)
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// ScrubPII masks email addresses and phone numbers in a transcript line.
// Names stay: audits need them to check identity confirmation.
func ScrubPII(text string) string {
	text = emailRe.ReplaceAllString(text, "[EMAIL]")
	return phoneRe.ReplaceAllString(text, "[PHONE]")
}

// ScrubTurns masks every turn in place.
func ScrubTurns(turns []Turn) {
	for i := range turns {
		turns[i].Text = ScrubPII(turns[i].Text)
	}
}
