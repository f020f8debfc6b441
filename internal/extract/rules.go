package extract

import (
	"fmt"
	"regexp"
	"strconv"
)

// All patterns run against folded text: lower-case, no diacritics, straight
// apostrophes.

type serviceRule struct {
	re      *regexp.Regexp
	service string
	price   string
}

// Specific services come before the generic haircut.
var serviceRules = []serviceRule{
	{regexp.MustCompile(`\bcoupe (et|avec|pis) (la |une |ma )?barbe\b|\bcoupe ?\+ ?barbe\b|\bcheveux et (la )?barbe\b`), "coupe et barbe", "45 $"},
	{regexp.MustCompile(`\brasage\b|\b(me |se )?faire raser\b|\brase(r)? de pres\b`), "rasage traditionnel", "35 $"},
	{regexp.MustCompile(`\bcolorations?\b|\bteintures?\b|\bcouleur\b|\bmeches\b|\bteindre\b`), "coloration", "60 $"},
	{regexp.MustCompile(`\bcoupe (pour )?(un |une |mon |ma )?(enfant|enfants|petit|petite|fils|fille|garcon|gars)\b|\bpour (mon|ma) (fils|fille|petit|garcon)\b`), "coupe enfant", "20 $"},
	{regexp.MustCompile(`\b(taille|tailler|trim|entretien)( de| la| ma)? barbe\b|\bbarbe\b|\bmoustache\b|\bbouc\b`), "taille de barbe", "20 $"},
	{regexp.MustCompile(`\bcoupe\b|\bcouper\b|\bcheveux\b|\btondeuse\b|\bdegrade\b|\bfade\b|\brafraichir\b`), "coupe homme", "30 $"},
}

type dateRule struct {
	re   *regexp.Regexp
	date string
	// time is implied by colloquialisms such as "à matin".
	time string
}

var dateRules = []dateRule{
	{regexp.MustCompile(`\bapres[- ]demain\b`), "après-demain", ""},
	{regexp.MustCompile(`\bdemain\b`), "demain", ""},
	{regexp.MustCompile(`\b(a|ce) matin\b`), "aujourd'hui", "matin"},
	{regexp.MustCompile(`\bcet apres[- ]midi\b`), "aujourd'hui", "après-midi"},
	{regexp.MustCompile(`\b(ce|a) soir\b`), "aujourd'hui", "soir"},
	{regexp.MustCompile(`\baujourd'hui\b|\btantot\b|\bajourd'hui\b`), "aujourd'hui", ""},
	{regexp.MustCompile(`\blundi\b`), "lundi", ""},
	{regexp.MustCompile(`\bmardi\b`), "mardi", ""},
	{regexp.MustCompile(`\bmercredi\b`), "mercredi", ""},
	{regexp.MustCompile(`\bjeudi\b`), "jeudi", ""},
	{regexp.MustCompile(`\bvendredi\b`), "vendredi", ""},
	{regexp.MustCompile(`\bsamedi\b`), "samedi", ""},
	{regexp.MustCompile(`\bdimanche\b`), "dimanche", ""},
}

type timeRule struct {
	re    *regexp.Regexp
	value string
	// format builds the value from submatches when value is empty.
	format func(m []string) (string, bool)
}

var timeRules = []timeRule{
	{re: regexp.MustCompile(`\b([01]?\d|2[0-3]) ?h ?([0-5]\d)?\b`), format: formatClock},
	{re: regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`), format: formatClock},
	{re: regexp.MustCompile(`\b(\d{1,2}|une|deux|trois|quatre|cinq|six|sept|huit|neuf|dix|onze|douze) heures?(?: (?:et )?(quart|demie|\d{2}))?(?: (de l'apres[- ]midi|du soir))?\b`), format: formatSpokenHour},
	{re: regexp.MustCompile(`\bapres[- ]midi\b|\bpm\b`), value: "après-midi"},
	{re: regexp.MustCompile(`\bavant[- ]midi\b|\bam\b`), value: "matin"},
	{re: regexp.MustCompile(`\bmidi\b`), value: "midi"},
	{re: regexp.MustCompile(`\bmatin\b|\bmatinee\b`), value: "matin"},
	{re: regexp.MustCompile(`\bsoir\b|\bsoiree\b|\bfin de (la )?journee\b|\bapres (le|la) (travail|job|ouvrage)\b`), value: "soir"},
}

var spokenHours = map[string]int{
	"une": 1, "deux": 2, "trois": 3, "quatre": 4, "cinq": 5, "six": 6,
	"sept": 7, "huit": 8, "neuf": 9, "dix": 10, "onze": 11, "douze": 12,
}

func formatClock(m []string) (string, bool) {
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour > 23 {
		return "", false
	}
	if len(m) > 2 && m[2] != "" {
		minutes, err := strconv.Atoi(m[2])
		if err != nil || minutes > 59 {
			return "", false
		}
		return clock(hour, minutes), true
	}
	return clock(hour, 0), true
}

func formatSpokenHour(m []string) (string, bool) {
	hour, ok := spokenHours[m[1]]
	if !ok {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return "", false
		}
		hour = n
	}
	if hour > 23 {
		return "", false
	}
	minutes := 0
	switch m[2] {
	case "":
	case "quart":
		minutes = 15
	case "demie":
		minutes = 30
	default:
		n, err := strconv.Atoi(m[2])
		if err != nil || n > 59 {
			return "", false
		}
		minutes = n
	}
	if m[3] != "" && hour < 12 {
		hour += 12
	}
	return clock(hour, minutes), true
}

func clock(hour, minutes int) string {
	if minutes == 0 {
		return fmt.Sprintf("%dh", hour)
	}
	return fmt.Sprintf("%dh%02d", hour, minutes)
}

var noPreferenceRe = regexp.MustCompile(`\bn'importe qui\b|\bn'importe lequel\b|\bpeu importe\b|\bpas de preference\b|\b(le )?premier disponible\b|\bcelui qui est libre\b`)

var (
	urgentRe     = regexp.MustCompile(`\burgen(t|te|ce)\b|\bau plus vite\b|\ble plus (tot|vite) possible\b|\btout de suite\b|\baujourd'hui meme\b|\bpresse\b|\bvite\b`)
	uncertainRe  = regexp.MustCompile(`\bje (ne )?sais pas\b|\bj'sais pas\b|\bche pas\b|\bpeut-etre\b|\bpas (trop )?sur\b|\bj'hesite\b|\bhesite\b|\bbof\b|\bje pense\b`)
	frustratedRe = regexp.MustCompile(`\bfrustr\w*|\bfache\b|\btanne\b|\bvoyons donc\b|\bca (marche|fonctionne) pas\b|\b(j'ai )?deja dit\b|\bridicule\b|\b(tu |vous )?(ne )?compren(d|ds|ez) (pas|rien)\b|\bcalisse\b|\bcrisse\b|\btabarnak\b|\bcoudonc\b`)
)
