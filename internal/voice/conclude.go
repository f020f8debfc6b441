package voice

import (
	"strings"

	"github.com/wolfman30/marcel-receptionist/internal/responder"
	"github.com/wolfman30/marcel-receptionist/internal/textutil"
)

var closingPhrases = []string{"rendez-vous confirmé", "tout est confirmé", "à bientôt"}

var closingRemarks = []string{
	"Merci d'avoir choisi Marcel, bonne journée!",
	"Au plaisir de vous voir bientôt au salon!",
	"Merci de votre appel et à la prochaine!",
	"Passez une excellente journée!",
}

// ShouldConclude reports whether the call can end after this reply: every
// slot is known, the caller's identity is settled and the reply itself
// closes the conversation.
func ShouldConclude(reply responder.Reply) bool {
	if !reply.Known.Complete() || !reply.IdentityConfirmed {
		return false
	}
	text := textutil.Fold(reply.Text)
	for _, phrase := range closingPhrases {
		if strings.Contains(text, textutil.Fold(phrase)) {
			return true
		}
	}
	return false
}
