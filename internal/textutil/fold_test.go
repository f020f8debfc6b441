package textutil

import "testing"

func TestFold(t *testing.T) {
	tests := map[string]string{
		"À matin":         "a matin",
		"Après-Demain":    "apres-demain",
		"Émilie":          "emilie",
		"aujourd’hui":     "aujourd'hui",
		"TANTÔT":          "tantot",
		"déjà plain text": "deja plain text",
	}
	for in, want := range tests {
		if got := Fold(in); got != want {
			t.Errorf("Fold(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"jEAN":              "Jean",
		"jean-françois":     "Jean-François",
		"  marie   GAGNON ": "Marie Gagnon",
		"al":                "Al",
	}
	for in, want := range tests {
		if got := TitleCase(in); got != want {
			t.Errorf("TitleCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCollapseSpaces(t *testing.T) {
	if got := CollapseSpaces("  a \t b\n\nc  "); got != "a b c" {
		t.Fatalf("got %q", got)
	}
}

func TestLowerKeepsAccents(t *testing.T) {
	if got := Lower("C’est HÉLÈNE"); got != "c'est hélène" {
		t.Fatalf("got %q", got)
	}
}
