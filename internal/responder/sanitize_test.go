package responder

import "testing"

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Une coupe homme, c'est 30 $.", "Une coupe homme, c'est 30 $."},
		{"emoji stripped", "Bonjour! 😊 Comment puis-je vous aider?", "Bonjour! Comment puis-je vous aider?"},
		{"skin tone modifier", "Super 👍🏽 merci", "Super merci"},
		{"dingbat with variation selector", "Rendez-vous confirmé ✂️ à 14h", "Rendez-vous confirmé à 14h"},
		{"bold markdown", "**Parfait** pour demain", "Parfait pour demain"},
		{"heading and bullet", "# Rendez-vous\n• coupe homme", "Rendez-vous coupe homme"},
		{"shortcode", "À demain :smile:", "À demain"},
		{"described emoji in parentheses", "Avec plaisir (visage souriant)", "Avec plaisir"},
		{"described emoji inline", "Merci clin d'œil à bientôt", "Merci à bientôt"},
		{"only emoji", "😊🎉", ""},
		{"accents survive", "Émilie est disponible après-midi", "Émilie est disponible après-midi"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Sanitize(tc.in); got != tc.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Bonjour!",
		"**__Bonjour__** 😊 (smiley) ( ) :wink: emoji émoji",
		"( ( visage souriant ) )",
		"Rendez-vous   confirmé ,  à bientôt .",
		"__ ## •• ~~",
		"Pouce levé 👍 pouce levé",
		"emoji emoji emoji",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Fatalf("Sanitize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
