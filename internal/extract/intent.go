package extract

import (
	"regexp"

	"github.com/wolfman30/marcel-receptionist/internal/textutil"
)

type intentRule struct {
	intent Intent
	re     *regexp.Regexp
}

// intentRules are tested in priority order; the first match wins.
var intentRules = []intentRule{
	{IntentBooking, regexp.MustCompile(`\brendez-vous\b|\brendez vous\b|\brdv\b|\breserv\w*|\bbook\w*|\bprendre (une )?place\b|\bje (veux|voudrais|veut|aimerais|souhaite) (une |un |me faire |faire |prendre )|\bme faire (couper|raser|tailler)\b`)},
	{IntentPricing, regexp.MustCompile(`\bprix\b|\bcombien\b|\bcoute\w*|\btarifs?\b|\bcher\b|\bcout\b`)},
	{IntentCancellation, regexp.MustCompile(`\bannul\w*|\bcancel\w*|\bdeplacer\b|\breporter\b|\bchanger (mon|le) rendez-vous\b`)},
	{IntentGreeting, regexp.MustCompile(`\bbonjour\b|\ballo\b|\bsalut\b|\bbonsoir\b|\bhello\b|\bbon matin\b`)},
	{IntentAvailability, regexp.MustCompile(`\bdisponib\w*|\bdispo\b|\bouvert\w*|\bferme\w*|\bde la place\b|\bquand (est-ce|etes)\b|\bhoraires?\b`)},
	{IntentRecommendation, regexp.MustCompile(`\brecommand\w*|\bconseil\w*|\bsuggest\w*|\bsuggere\w*|\bqu'est-ce que (tu|vous) (me )?propose\w*|\bquel(le)? (style|coupe|barbier)\b`)},
	{IntentInfo, regexp.MustCompile(`\badresse\b|\bou (etes|est|sont)\b|\bstationnement\b|\bparking\b|\bcomment (se rendre|venir|y aller)\b|\binfo\w*|\bmetro\b`)},
}

// ClassifyIntent returns the highest-priority intent mentioned in text, or
// IntentGeneral.
func ClassifyIntent(text string) Intent {
	folded := textutil.Fold(text)
	for _, r := range intentRules {
		if r.re.MatchString(folded) {
			return r.intent
		}
	}
	return IntentGeneral
}
