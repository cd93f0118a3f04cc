// Package key models pitch without any notion of scale: pitch classes (Key),
// absolute MIDI pitches (Note), and their spelled counterparts (NamedKey,
// NamedNote).
package key

import (
	"github.com/jsphweid/midiscore/util"
	"github.com/pkg/errors"
)

var (
	ErrNoteRange = errors.New("note out of range")
	ErrKeyName   = errors.New("invalid key name")
	ErrNoteName  = errors.New("invalid note name")
)

const (
	MinNote = 0
	MaxNote = 127

	// octaves that hold at least one MIDI note
	MinOctave = -1
	MaxOctave = 9
)

// Key is one of the 12 pitch classes: 0 is C, 11 is B.
type Key uint8

// New normalizes any integer into a Key, wrapping negative values (-1 is B).
func New(k int) Key {
	return Key(util.Mod(k, 12))
}

// Add transposes the key by offset semitones, wrapping around the octave.
func (k Key) Add(offset int) Key {
	return New(int(k) + offset)
}

func (k Key) String() string {
	return k.DefaultNamedKey().String()
}

// Note is an absolute pitch with MIDI numbering: 0 is C-1, 60 is C4.
type Note uint8

func NewNote(n int) (Note, error) {
	if n < MinNote || n > MaxNote {
		return 0, errors.Wrapf(ErrNoteRange, "%d is not within %d..%d", n, MinNote, MaxNote)
	}
	return Note(n), nil
}

// Compose builds the note of key k in the given octave. C4 is 60.
func Compose(k Key, octave int) (Note, error) {
	if octave < MinOctave || octave > MaxOctave {
		return 0, errors.Wrapf(ErrNoteRange, "octave %d is not within %d..%d", octave, MinOctave, MaxOctave)
	}
	return NewNote(int(k) + (octave+1)*12)
}

// Decompose is the inverse of Compose.
func (n Note) Decompose() (Key, int) {
	k := New(int(n))
	return k, (int(n)-int(k))/12 - 1
}

// Add shifts the note by offset semitones. Leaving the MIDI range is an
// error, never a wrap.
func (n Note) Add(offset int) (Note, error) {
	return NewNote(int(n) + offset)
}

func (n Note) String() string {
	return n.DefaultNamedNote().String()
}
