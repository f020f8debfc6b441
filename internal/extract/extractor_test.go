package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/marcel-receptionist/internal/directory"
)

func newTestExtractor() *Extractor {
	return New(directory.Seed())
}

func TestExtractEmptyInput(t *testing.T) {
	e := newTestExtractor()
	for _, in := range []string{"", "   ", "euh", "mmm ok"} {
		got := e.Extract(in)
		assert.Equal(t, Context{Intent: IntentGeneral}, got, "input %q", in)
	}
}

func TestExtractFullBookingSentence(t *testing.T) {
	e := newTestExtractor()

	got := e.Extract("Je veux une coupe demain à 14h avec Marco")

	assert.Equal(t, "coupe homme", got.Service)
	assert.Equal(t, "30 $", got.Price)
	assert.Equal(t, "demain", got.Date)
	assert.Equal(t, "14h", got.Time)
	assert.Equal(t, "Marco", got.Barber)
	assert.Equal(t, "Barbier du Plateau", got.Salon)
	assert.Equal(t, IntentBooking, got.Intent)
	assert.True(t, got.Complete())
}

func TestExtractServiceOrder(t *testing.T) {
	e := newTestExtractor()
	cases := map[string][2]string{
		"une coupe et barbe svp":            {"coupe et barbe", "45 $"},
		"coupe pis barbe":                   {"coupe et barbe", "45 $"},
		"je voudrais me faire raser":        {"rasage traditionnel", "35 $"},
		"une coloration":                    {"coloration", "60 $"},
		"une coupe pour mon fils":           {"coupe enfant", "20 $"},
		"juste tailler la barbe":            {"taille de barbe", "20 $"},
		"arranger ma moustache":             {"taille de barbe", "20 $"},
		"un dégradé":                        {"coupe homme", "30 $"},
		"me faire couper les cheveux":       {"coupe homme", "30 $"},
		"Je veux une COUPE":                 {"coupe homme", "30 $"},
		"un rendez-vous au Rasoir Rosemont": {"", ""},
	}
	for in, want := range cases {
		got := e.Extract(in)
		assert.Equal(t, want[0], got.Service, "input %q", in)
		assert.Equal(t, want[1], got.Price, "input %q", in)
	}
}

func TestExtractDateColloquialisms(t *testing.T) {
	e := newTestExtractor()
	cases := []struct {
		in, date, time string
	}{
		{"à matin si possible", "aujourd'hui", "matin"},
		{"ce matin", "aujourd'hui", "matin"},
		{"tantôt", "aujourd'hui", ""},
		{"ce soir", "aujourd'hui", "soir"},
		{"cet après-midi", "aujourd'hui", "après-midi"},
		{"aujourd’hui", "aujourd'hui", ""},
		{"demain matin", "demain", "matin"},
		{"après-demain", "après-demain", ""},
		{"vendredi vers midi", "vendredi", "midi"},
		{"samedi en fin de journée", "samedi", "soir"},
	}
	for _, tc := range cases {
		got := e.Extract(tc.in)
		assert.Equal(t, tc.date, got.Date, "input %q", tc.in)
		assert.Equal(t, tc.time, got.Time, "input %q", tc.in)
	}
}

func TestExtractTimes(t *testing.T) {
	e := newTestExtractor()
	cases := map[string]string{
		"14h":                         "14h",
		"vers 14h30":                  "14h30",
		"9 h":                         "9h",
		"à 16:45":                     "16h45",
		"deux heures de l'après-midi": "14h",
		"dix heures et demie":         "10h30",
		"3 heures et quart":           "3h15",
		"sept heures du soir":         "19h",
		"en après-midi":               "après-midi",
		"en avant-midi":               "matin",
		"25h":                         "",
	}
	for in, want := range cases {
		assert.Equal(t, want, e.Extract(in).Time, "input %q", in)
	}
}

func TestExtractBarber(t *testing.T) {
	e := newTestExtractor()

	got := e.Extract("avec Tony si possible")
	assert.Equal(t, "Antoine", got.Barber)
	assert.Equal(t, "Le Rasoir Rosemont", got.Salon)

	got = e.Extract("Émilie pour mon garçon")
	assert.Equal(t, "Émilie", got.Barber)

	got = e.Extract("n'importe qui, ça me dérange pas")
	assert.Equal(t, FirstAvailable, got.Barber)
	assert.Empty(t, got.Salon)

	got = e.Extract("au Vieux-Port")
	assert.Empty(t, got.Barber)
	assert.Equal(t, "Coiffure du Vieux-Port", got.Salon)
}

func TestExtractClientName(t *testing.T) {
	e := newTestExtractor()
	cases := map[string]string{
		"C'est Jean":                          "Jean",
		"c'est jean tremblay":                 "Jean Tremblay",
		"bonjour je m'appelle hélène roy":     "Hélène Roy",
		"mon nom est GAGNON":                  "Gagnon",
		"moi c'est Al":                        "Al",
		"c'est jean qui appelle":              "Jean",
		"oui bonjour, Marie à l'appareil":     "Marie",
		"c'est pour une coupe":                "",
		"c'est correct":                       "",
		"c'est demain":                        "",
		"c'est urgent":                        "",
		"c'est Marco qui me coupe d'habitude": "",
		"ici 4521":                            "",
		"c'est pour une coupe, moi c'est Luc": "Luc",
		"c'est combien?":                      "",
		"c'est quelle heure déjà":             "",
		"ok c'est noté":                       "",
		"ici Marcel?":                         "",
	}
	for in, want := range cases {
		assert.Equal(t, want, e.Extract(in).ClientName, "input %q", in)
	}
}

func TestExtractFlags(t *testing.T) {
	e := newTestExtractor()

	assert.True(t, e.Extract("c'est urgent, le plus tôt possible").Urgent)
	assert.True(t, e.Extract("je sais pas trop").Uncertain)
	assert.True(t, e.Extract("voyons donc, je l'ai déjà dit").Frustrated)

	calm := e.Extract("une coupe demain")
	assert.False(t, calm.Urgent)
	assert.False(t, calm.Uncertain)
	assert.False(t, calm.Frustrated)
}

func TestExtractIsIdempotent(t *testing.T) {
	e := newTestExtractor()
	text := "Bonjour c'est Jean, je veux une coupe et barbe à matin avec Karim, c'est urgent"

	first := e.Extract(text)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, e.Extract(text))
	}
}

func TestAccumulationIsMonotonic(t *testing.T) {
	e := newTestExtractor()
	turns := []string{"Bonjour", "C'est Jean", "Je veux une coupe", "demain", "14h", "avec Marco", "merci"}

	var (
		known      Context
		transcript []string
		seen       = map[Slot]bool{}
	)
	for _, turn := range turns {
		transcript = append(transcript, turn)
		known = known.Merge(e.Extract(strings.Join(transcript, " ")))
		for slot := range seen {
			assert.Contains(t, known.Known(), slot, "slot %s lost after %q", slot, turn)
		}
		for _, slot := range known.Known() {
			seen[slot] = true
		}
	}

	require.True(t, known.Complete())
	assert.Equal(t, "Jean", known.ClientName)
	assert.Equal(t, "coupe homme", known.Service)
	assert.Equal(t, "demain", known.Date)
	assert.Equal(t, "14h", known.Time)
	assert.Equal(t, "Marco", known.Barber)
}

func TestNilDirectoryExtractor(t *testing.T) {
	e := New(nil)
	got := e.Extract("une coupe demain à 10h avec Marco, c'est Jean")
	assert.Equal(t, "coupe homme", got.Service)
	assert.Empty(t, got.Barber)
	assert.Equal(t, "Jean", got.ClientName)
}
