package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHashPhone(t *testing.T) {
	h1 := HashPhone("+15145551234")
	h2 := HashPhone("+15145551234")
	h3 := HashPhone("+14385559012")

	assert.Equal(t, h1, h2, "same input should produce same hash")
	assert.NotEqual(t, h1, h3, "different input should produce different hash")
	assert.Len(t, h1, 64, "SHA-256 hex should be 64 chars")
	assert.Empty(t, HashPhone(""))
	assert.Equal(t, h1, HashPhone("(514) 555-1234"), "formats of one number share a hash")
}

func TestScrubPII(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"email", "écrivez-moi à jean@exemple.ca svp", "écrivez-moi à [EMAIL] svp"},
		{"phone", "rappelez-moi au (514) 555-1234", "rappelez-moi au [PHONE]"},
		{"dictated phone", "c'est le 438 555 9012 merci", "c'est le [PHONE] merci"},
		{"phone with plus", "mon numéro est +15145551234", "mon numéro est [PHONE]"},
		{"no pii", "Je veux une coupe demain", "Je veux une coupe demain"},
		{"name kept", "C'est Jean Tremblay", "C'est Jean Tremblay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, ScrubPII(tt.input))
		})
	}
}

func TestScrubTurns(t *testing.T) {
	turns := []Turn{
		{Role: "caller", Text: "mon courriel est jean@test.ca", At: time.Now()},
		{Role: "system", Text: "C'est noté!", At: time.Now()},
	}
	ScrubTurns(turns)
	assert.Equal(t, "mon courriel est [EMAIL]", turns[0].Text)
	assert.Equal(t, "C'est noté!", turns[1].Text)
}
