//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/jsphweid/midiscore/chord"
	"github.com/jsphweid/midiscore/cmd"
	"github.com/jsphweid/midiscore/config"
	"github.com/jsphweid/midiscore/midi"
	"github.com/jsphweid/midiscore/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var server *httptest.Server

func TestMain(m *testing.M) {
	server = httptest.NewServer(cmd.NewRouter(config.Default()))
	exitVal := m.Run()
	server.Close()
	os.Exit(exitVal)
}

func render(t *testing.T, piece string) []model.Chord {
	resp, err := http.Post(server.URL+"/render", "application/json", strings.NewReader(piece))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	s, err := midi.ReadMidi(bytes.NewReader(body))
	require.NoError(t, err)
	return chord.GetChords(s)
}

func TestTriadProgressionE2E(t *testing.T) {
	chords := render(t, `{"bpm": 120, "tracks": [
		{"id": "pad", "scale": "Cmaj", "octave": 4, "start": 0, "chord": "triad", "notes": [0, 3, 4]}
	]}`)

	assert.Equal(t, []model.Chord{
		{TicksOffset: 0, Notes: model.Notes{60, 64, 67}},
		{TicksOffset: 24, Notes: model.Notes{65, 69, 72}},
		{TicksOffset: 48, Notes: model.Notes{67, 71, 74}},
	}, chords)
}

func TestVoicesMeetE2E(t *testing.T) {
	chords := render(t, `{"bpm": 90, "tracks": [
		{"id": "upper", "scale": "Ebmin", "octave": 4, "start": 0, "notes": [0, 2, 4]},
		{"id": "lower", "scale": "Ebmin", "octave": 3, "start": {"upper": 2}, "notes": [0]}
	]}`)

	assert.Equal(t, []model.Chord{
		{TicksOffset: 0, Notes: model.Notes{63}},
		{TicksOffset: 24, Notes: model.Notes{66}},
		{TicksOffset: 48, Notes: model.Notes{51, 70}},
	}, chords)
}

func TestSpellE2E(t *testing.T) {
	resp, err := http.Get(server.URL + "/scales/Ebmin/notes?octave=4&unicode=true")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res model.SpellResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))

	names := make([]string, len(res.Notes))
	for i, n := range res.Notes {
		names[i] = n.Name
	}
	assert.Equal(t, []string{"E♭4", "F4", "G♭4", "A♭4", "B♭4", "C♭5", "D5"}, names)
}
