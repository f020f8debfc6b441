package voice

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseMarshal(t *testing.T) {
	resp := Response{Verbs: []any{
		Gather{
			Input:         "speech",
			Action:        "/voice",
			Method:        "POST",
			Language:      "fr-CA",
			Timeout:       5,
			SpeechTimeout: "auto",
			Says:          []Say{{Voice: "Polly.Liam-Neural", Language: "fr-CA", Text: "Bonjour & bienvenue"}},
		},
		Say{Voice: "Polly.Liam-Neural", Text: "Au revoir"},
		Pause{Length: 1},
		Hangup{},
	}}

	body, err := resp.Marshal()
	require.NoError(t, err)
	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8"?>`+"\n"+
		`<Response>`+
		`<Gather input="speech" action="/voice" method="POST" language="fr-CA" timeout="5" speechTimeout="auto">`+
		`<Say voice="Polly.Liam-Neural" language="fr-CA">Bonjour &amp; bienvenue</Say>`+
		`</Gather>`+
		`<Say voice="Polly.Liam-Neural">Au revoir</Say>`+
		`<Pause length="1"></Pause>`+
		`<Hangup></Hangup>`+
		`</Response>`, string(body))
}

func TestWriteTwiMLSetsContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, writeTwiML(rec, Response{Verbs: []any{Hangup{}}}))
	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "text/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<Hangup></Hangup>")
}
