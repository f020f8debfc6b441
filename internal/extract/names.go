package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wolfman30/marcel-receptionist/internal/textutil"
)

// Name patterns run on lower-cased text that keeps its accents so that
// "Hélène" survives extraction. The capture holds up to two words.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bje m'appelle\s+([\p{L}-]+(?:\s+[\p{L}-]+)?)`),
	regexp.MustCompile(`\bj'm'appelle\s+([\p{L}-]+(?:\s+[\p{L}-]+)?)`),
	regexp.MustCompile(`\bmon nom (?:est|c'est)\s+([\p{L}-]+(?:\s+[\p{L}-]+)?)`),
	regexp.MustCompile(`\bmoi c'est\s+([\p{L}-]+(?:\s+[\p{L}-]+)?)`),
	regexp.MustCompile(`\bici c'est\s+([\p{L}-]+(?:\s+[\p{L}-]+)?)`),
	regexp.MustCompile(`\bc'est\s+([\p{L}-]+(?:\s+[\p{L}-]+)?)`),
	regexp.MustCompile(`\bici\s+([\p{L}-]+(?:\s+[\p{L}-]+)?)`),
}

// nameStopwords are folded tokens that can follow "c'est" or "ici" without
// being a name.
var nameStopwords = toSet(
	// function words
	"a", "au", "aux", "avec", "car", "ce", "ca", "cela", "ces", "cet", "cette", "d", "dans", "de", "des", "du",
	"elle", "en", "et", "eux", "il", "je", "la", "le", "les", "leur", "lui", "ma", "mais", "me", "mes",
	"moi", "mon", "ne", "ni", "nous", "on", "ou", "par", "pas", "plus", "pour", "qu", "que", "qui", "quoi",
	"quand", "comment", "pourquoi", "combien", "quel", "quelle", "quels", "quelles", "lequel", "laquelle",
	"est-ce", "sa", "se", "ses", "si", "son", "sur", "ta", "te", "tes", "toi", "ton",
	"tu", "un", "une", "vous", "votre", "vos", "y", "the", "it",
	// answers and fillers
	"ok", "okay", "oui", "non", "ouais", "bon", "bien", "beau", "correct", "parfait", "super", "genial",
	"excellent", "exact", "exactement", "vrai", "faux", "sur", "certain", "possible", "impossible",
	"tout", "toute", "tous", "rien", "juste", "simple", "simplement", "encore", "deja", "vraiment",
	"assez", "trop", "tres", "peut-etre", "dommage", "merci", "bonjour", "allo", "salut", "bonsoir",
	"revoir", "pareil", "ainsi", "fini", "termine", "important", "urgent", "complique", "difficile",
	"facile", "cher", "gratuit", "normal", "drole", "lui-meme", "moi-meme", "correcte", "confirme",
	"entendu", "clair", "compris", "pret", "prete", "libre", "disponible", "dispo", "ferme", "ouvert",
	"mieux", "pire", "fou", "nice", "cool", "good", "fine", "note", "beaucoup", "marcel", "vous-meme",
	"bizarre", "fait", "what", "how",
	// slot vocabulary
	"aujourd'hui", "demain", "apres-demain", "tantot", "lundi", "mardi", "mercredi", "jeudi",
	"vendredi", "samedi", "dimanche", "matin", "midi", "apres-midi", "soir", "semaine", "heure", "heures",
	"coupe", "barbe", "moustache", "rasage", "coloration", "couleur", "enfant", "cheveux", "degrade",
	"rendez-vous", "rdv", "prix", "client", "cliente", "nouveau", "nouvelle", "barbier", "salon",
	"premier", "premiere", "personne", "quelqu'un", "n'importe", "mon", "ici", "la-bas", "la", "cela",
)

func toSet(words ...string) map[string]bool {
	out := make(map[string]bool, len(words))
	for _, w := range words {
		out[w] = true
	}
	return out
}

// validNameWord rejects stopwords, non-letters and single letters.
func validNameWord(word string, stop map[string]bool) bool {
	word = strings.Trim(word, "-")
	if utf8.RuneCountInString(word) < 2 {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) && r != '-' {
			return false
		}
	}
	folded := textutil.Fold(word)
	return !nameStopwords[folded] && !stop[folded]
}

// nameCandidate validates a captured "first [last]" phrase. An invalid
// second word is dropped; an invalid first word rejects the candidate.
func nameCandidate(capture string, stop map[string]bool) (string, bool) {
	words := strings.Fields(capture)
	if len(words) == 0 || !validNameWord(words[0], stop) {
		return "", false
	}
	name := words[0]
	if len(words) > 1 && validNameWord(words[1], stop) {
		name += " " + words[1]
	}
	return textutil.TitleCase(name), true
}
