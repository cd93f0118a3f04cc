package key

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseNamedNote(t *testing.T, s string) NamedNote {
	t.Helper()
	nn, err := ParseNamedNote(s)
	require.NoError(t, err)
	return nn
}

func soundingNote(t *testing.T, s string) Note {
	t.Helper()
	n, err := mustParseNamedNote(t, s).Note()
	require.NoError(t, err)
	return n
}

func TestEnharmonicBoundaries(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(soundingNote(t, "C4"), soundingNote(t, "B#3"))
	assert.Equal(soundingNote(t, "B3"), soundingNote(t, "Cb4"))
	assert.Equal(Note(60), soundingNote(t, "C4"))
	assert.Equal(Note(59), soundingNote(t, "Cb4"))
	assert.Equal(Note(61), soundingNote(t, "Bx3"))
	assert.Equal(Note(63), soundingNote(t, "Eb4"))
	assert.Equal(Note(0), soundingNote(t, "C-1"))
}

func TestNamedNoteOutOfRange(t *testing.T) {
	_, err := mustParseNamedNote(t, "Cb-1").Note()
	assert.True(t, errors.Is(err, ErrNoteRange))

	_, err = mustParseNamedNote(t, "G#9").Note()
	assert.True(t, errors.Is(err, ErrNoteRange))
}

func TestNamedKeyStartingWith(t *testing.T) {
	cases := []struct {
		key    Key
		letter Letter
		want   string
		ok     bool
	}{
		{0, B, "B#", true},
		{0, C, "C", true},
		{0, D, "", false},
		{1, C, "C#", true},
		{1, D, "Db", true},
		{2, C, "Cx", true},
		{4, F, "Fb", true},
		{5, E, "E#", true},
		{6, E, "Ex", true},
		{6, G, "Gb", true},
		{7, F, "Fx", true},
		{9, G, "Gx", true},
		{10, C, "", false},
		{11, C, "Cb", true},
		{11, A, "Ax", true},
		{3, G, "", false},
	}
	for _, c := range cases {
		t.Run(c.key.String()+"/"+c.letter.String(), func(t *testing.T) {
			nk, ok := c.key.NamedKeyStartingWith(c.letter)
			assert.Equal(t, c.ok, ok)
			if c.ok {
				assert.Equal(t, c.want, nk.String())
				assert.Equal(t, c.key, nk.Key())
			}
		})
	}
}

func TestEverySpellingDenotesItsKey(t *testing.T) {
	for k := Key(0); k < 12; k++ {
		spellings := 0
		for _, l := range C.LettersInOrder() {
			if nk, ok := k.NamedKeyStartingWith(l); ok {
				assert.Equal(t, k, nk.Key())
				spellings++
			}
		}
		// every pitch class has at least two spellings within flat..double sharp
		assert.GreaterOrEqual(t, spellings, 2, "key %d", k)
	}
}

func TestNamedNoteStartingWith(t *testing.T) {
	cases := []struct {
		note   Note
		letter Letter
		want   string
	}{
		{60, B, "B#3"},
		{59, C, "Cb4"},
		{61, B, "Bx3"},
		{71, C, "Cb5"},
		{62, D, "D4"},
		{63, E, "Eb4"},
		{66, G, "Gb4"},
	}
	for _, c := range cases {
		t.Run(c.want, func(t *testing.T) {
			nn, ok := c.note.NamedNoteStartingWith(c.letter)
			require.True(t, ok)
			assert.Equal(t, c.want, nn.String())
			n, err := nn.Note()
			require.NoError(t, err)
			assert.Equal(t, c.note, n)
		})
	}

	_, ok := Note(60).NamedNoteStartingWith(E)
	assert.False(t, ok)
}

func TestNamedNoteRoundTripsEverySpelling(t *testing.T) {
	for p := MinNote; p <= MaxNote; p++ {
		n := Note(p)
		for _, l := range C.LettersInOrder() {
			nn, ok := n.NamedNoteStartingWith(l)
			if !ok {
				continue
			}
			back, err := nn.Note()
			require.NoError(t, err)
			assert.Equal(t, n, back, "%s", nn)
		}
	}
}

func TestDefaultSpellingTextRoundTrip(t *testing.T) {
	for p := MinNote; p <= MaxNote; p++ {
		s := Note(p).DefaultNamedNote().String()
		parsed, err := ParseNamedNote(s)
		require.NoError(t, err)
		assert.Equal(t, s, parsed.String())
		n, err := parsed.Note()
		require.NoError(t, err)
		assert.Equal(t, Note(p), n)
	}
	for k := Key(0); k < 12; k++ {
		s := k.DefaultNamedKey().String()
		parsed, err := ParseNamedKey(s)
		require.NoError(t, err)
		assert.Equal(t, s, parsed.String())
	}
}

func TestParseAliases(t *testing.T) {
	cases := map[string]string{
		"C##": "Cx",
		"C𝄪":  "Cx",
		"Cx":  "Cx",
		"E♭":  "Eb",
		"F♯":  "F#",
		"B𝄫":  "Bbb",
		"Bbb": "Bbb",
		"A":   "A",
	}
	for in, want := range cases {
		nk, err := ParseNamedKey(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, nk.String(), in)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "H", "c", "C#b", "Cbbb", "C#"} {
		_, err := ParseNamedNote(s)
		assert.True(t, errors.Is(err, ErrNoteName), s)
	}
	for _, s := range []string{"", "H", "C4", "Cy"} {
		_, err := ParseNamedKey(s)
		assert.True(t, errors.Is(err, ErrKeyName), s)
	}
	_, err := ParseNamedNote("C10")
	assert.True(t, errors.Is(err, ErrNoteName))
}

func TestUnicodeRendering(t *testing.T) {
	nn := mustParseNamedNote(t, "Eb4")
	assert.Equal(t, "E♭4", nn.Unicode())
	assert.Equal(t, "F𝄪", NewNamedKey(F, DoubleSharp).Unicode())
}

func TestLettersInOrder(t *testing.T) {
	assert.Equal(t, []Letter{D, E, F, G, A, B, C}, D.LettersInOrder())
	assert.Equal(t, []Letter{B, C, D, E, F, G, A}, B.LettersInOrder())
}

func TestTextMarshalling(t *testing.T) {
	var nn NamedNote
	require.NoError(t, nn.UnmarshalText([]byte("F#3")))
	text, err := nn.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "F#3", string(text))
	assert.Error(t, nn.UnmarshalText([]byte("nope")))
}
