package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/marcel-receptionist/internal/directory"
	"github.com/wolfman30/marcel-receptionist/internal/responder"
	"github.com/wolfman30/marcel-receptionist/internal/session"
	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

func TestPlayDefaultScriptBooks(t *testing.T) {
	gen, err := responder.New(responder.Config{
		Sessions:  session.NewMemoryStore(session.Options{}),
		Directory: directory.Seed(),
		Logger:    logging.Discard(),
	})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, play(context.Background(), &out, gen, "call:sim", "+15145551234", defaultScript))

	text := out.String()
	assert.Contains(t, text, "Client: Bonjour")
	assert.Contains(t, text, "Marcel [rules]:")
	assert.Contains(t, text, "rendez-vous confirmé")
	assert.Contains(t, text, "-- appel terminé --")
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string, string, string) (responder.Reply, error) {
	return responder.Reply{}, responder.ErrNoResponse
}

func TestPlayStopsOnError(t *testing.T) {
	var out bytes.Buffer
	err := play(context.Background(), &out, failingGenerator{}, "call:sim", "", []string{"Allo"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, responder.ErrNoResponse))
}
