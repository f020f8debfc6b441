package responder

import (
	"regexp"
	"strings"
)

var (
	emojiRe     = regexp.MustCompile(`[\x{1F000}-\x{1FAFF}\x{2600}-\x{27BF}\x{2300}-\x{23FF}\x{2B00}-\x{2BFF}\x{1F1E6}-\x{1F1FF}\x{FE00}-\x{FE0F}\x{200D}\x{20E3}\x{E0020}-\x{E007F}]`)
	shortcodeRe = regexp.MustCompile(`:[a-z0-9_+-]+:`)
	markdownRe  = regexp.MustCompile("[*#•_~`>|]+")
	emptyParen  = regexp.MustCompile(`[(\[]\s*[)\]]`)
	spaceBefore = regexp.MustCompile(`\s+([,.])`)
	multiSpace  = regexp.MustCompile(`\s{2,}`)
)

// symbolDescriptions are French phrases a model uses to describe an emoji or
// a symbol. They must never reach the speech synthesizer.
var symbolDescriptions = []string{
	"visage souriant", "visage qui sourit", "visage qui rit", "clin d'œil", "clin d'oeil",
	"pouce levé", "pouces levés", "cœur rouge", "coeur rouge", "petit cœur", "petit coeur",
	"main qui salue", "mains jointes", "étoiles scintillantes", "étoile brillante",
	"ciseaux emoji", "rasoir emoji", "emoji", "emojis", "émoji", "émojis", "émoticône",
	"émoticônes", "emoticone", "emoticones", "smiley", "smileys", "binette", "binettes",
	"astérisque", "astérisques", "dièse", "arobase", "puce",
}

var symbolDescRe = func() *regexp.Regexp {
	alts := make([]string, len(symbolDescriptions))
	for i, d := range symbolDescriptions {
		alts[i] = regexp.QuoteMeta(d)
	}
	return regexp.MustCompile(`(?i)(^|[^\p{L}])(?:` + strings.Join(alts, "|") + `)([^\p{L}]|$)`)
}()

// Sanitize strips emoji, markdown symbols and spoken symbol descriptions from
// model output. It repeats until the text stops changing, so
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	for {
		next := sanitizeOnce(s)
		if next == s {
			return next
		}
		s = next
	}
}

func sanitizeOnce(s string) string {
	s = emojiRe.ReplaceAllString(s, "")
	s = shortcodeRe.ReplaceAllString(s, "")
	s = markdownRe.ReplaceAllString(s, "")
	s = symbolDescRe.ReplaceAllString(s, "${1}${2}")
	s = emptyParen.ReplaceAllString(s, "")
	s = spaceBefore.ReplaceAllString(s, "$1")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
