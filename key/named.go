package key

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/jsphweid/midiscore/util"
	"github.com/pkg/errors"
)

// Letter is the base name of a spelled key.
type Letter uint8

const (
	C Letter = iota
	D
	E
	F
	G
	A
	B
)

const numLetters = 7

var letterNames = [numLetters]string{"C", "D", "E", "F", "G", "A", "B"}

// E-F and B-C are semitones, every other step is a whole tone.
var letterKeys = [numLetters]Key{0, 2, 4, 5, 7, 9, 11}

// Key is the pitch class of the natural letter.
func (l Letter) Key() Key {
	return letterKeys[l]
}

func (l Letter) String() string {
	return letterNames[l]
}

// LettersInOrder returns the seven letters starting from l, e.g. D E F G A B C.
func (l Letter) LettersInOrder() []Letter {
	res := make([]Letter, 0, numLetters)
	for i := 0; i < numLetters; i++ {
		res = append(res, Letter((int(l)+i)%numLetters))
	}
	return res
}

func parseLetter(s string) (Letter, bool) {
	for i, name := range letterNames {
		if name == s {
			return Letter(i), true
		}
	}
	return 0, false
}

// Accidental is the number of semitones a spelled key sits above its letter.
type Accidental int8

const (
	DoubleFlat  Accidental = -2
	Flat        Accidental = -1
	Natural     Accidental = 0
	Sharp       Accidental = 1
	DoubleSharp Accidental = 2
)

func (a Accidental) String() string {
	switch a {
	case DoubleFlat:
		return "bb"
	case Flat:
		return "b"
	case Natural:
		return ""
	case Sharp:
		return "#"
	case DoubleSharp:
		return "x"
	}
	return fmt.Sprintf("(%d)", int8(a))
}

func (a Accidental) Unicode() string {
	switch a {
	case DoubleFlat:
		return "𝄫"
	case Flat:
		return "♭"
	case Sharp:
		return "♯"
	case DoubleSharp:
		return "𝄪"
	}
	return a.String()
}

func parseAccidental(s string) (Accidental, bool) {
	switch s {
	case "":
		return Natural, true
	case "b", "♭":
		return Flat, true
	case "bb", "𝄫":
		return DoubleFlat, true
	case "#", "♯":
		return Sharp, true
	case "x", "##", "𝄪":
		return DoubleSharp, true
	}
	return 0, false
}

// NamedKey is a spelled pitch class such as F# or Gb.
type NamedKey struct {
	Letter     Letter
	Accidental Accidental
}

func NewNamedKey(l Letter, a Accidental) NamedKey {
	return NamedKey{Letter: l, Accidental: a}
}

// Key returns the pitch class this spelling denotes.
func (nk NamedKey) Key() Key {
	return nk.Letter.Key().Add(int(nk.Accidental))
}

func (nk NamedKey) String() string {
	return nk.Letter.String() + nk.Accidental.String()
}

func (nk NamedKey) Unicode() string {
	return nk.Letter.String() + nk.Accidental.Unicode()
}

func (nk NamedKey) MarshalText() ([]byte, error) {
	return []byte(nk.String()), nil
}

func (nk *NamedKey) UnmarshalText(text []byte) error {
	parsed, err := ParseNamedKey(string(text))
	if err != nil {
		return err
	}
	*nk = parsed
	return nil
}

const accidentalPattern = `(bb|b|##|#|x|♭|♯|𝄪|𝄫)?`

var (
	namedKeyRegex  = regexp.MustCompile(`^([A-G])` + accidentalPattern + `$`)
	namedNoteRegex = regexp.MustCompile(`^([A-G])` + accidentalPattern + `(-1|[0-9])$`)
)

func ParseNamedKey(s string) (NamedKey, error) {
	captures := namedKeyRegex.FindStringSubmatch(s)
	if captures == nil {
		return NamedKey{}, errors.Wrapf(ErrKeyName, "%q", s)
	}
	return namedKeyFromCaptures(s, captures[1], captures[2], ErrKeyName)
}

func namedKeyFromCaptures(s, letter, accidental string, sentinel error) (NamedKey, error) {
	l, ok := parseLetter(letter)
	if !ok {
		return NamedKey{}, errors.Wrapf(sentinel, "%q", s)
	}
	a, ok := parseAccidental(accidental)
	if !ok {
		return NamedKey{}, errors.Wrapf(sentinel, "%q", s)
	}
	return NewNamedKey(l, a), nil
}

// NamedKeyStartingWith spells k with the given letter. The second result is
// false when no accidental between flat and double sharp reaches k from l.
func (k Key) NamedKeyStartingWith(l Letter) (NamedKey, bool) {
	// distance from the natural letter, folded into [-6, 5]
	a := Accidental(util.Mod(int(k)-int(l.Key())+6, 12) - 6)
	if a < Flat || a > DoubleSharp {
		return NamedKey{}, false
	}
	return NewNamedKey(l, a), true
}

var defaultNamedKeys = [12]NamedKey{
	{C, Natural}, {C, Sharp}, {D, Natural}, {D, Sharp}, {E, Natural}, {F, Natural},
	{F, Sharp}, {G, Natural}, {G, Sharp}, {A, Natural}, {A, Sharp}, {B, Natural},
}

// DefaultNamedKey is the fixed spelling of k: naturals, or sharps on the
// black keys.
func (k Key) DefaultNamedKey() NamedKey {
	return defaultNamedKeys[k]
}

// NamedNote is a spelled absolute pitch. Octave belongs to the letter, so
// B#3 sounds as C4 and Cb4 sounds as B3.
type NamedNote struct {
	NamedKey NamedKey
	Octave   int
}

func NewNamedNote(nk NamedKey, octave int) NamedNote {
	return NamedNote{NamedKey: nk, Octave: octave}
}

// Note returns the sounding pitch.
func (nn NamedNote) Note() (Note, error) {
	return NewNote(int(nn.NamedKey.Letter.Key()) + (nn.Octave+1)*12 + int(nn.NamedKey.Accidental))
}

func (nn NamedNote) String() string {
	return nn.NamedKey.String() + strconv.Itoa(nn.Octave)
}

func (nn NamedNote) Unicode() string {
	return nn.NamedKey.Unicode() + strconv.Itoa(nn.Octave)
}

func (nn NamedNote) MarshalText() ([]byte, error) {
	return []byte(nn.String()), nil
}

func (nn *NamedNote) UnmarshalText(text []byte) error {
	parsed, err := ParseNamedNote(string(text))
	if err != nil {
		return err
	}
	*nn = parsed
	return nil
}

func ParseNamedNote(s string) (NamedNote, error) {
	captures := namedNoteRegex.FindStringSubmatch(s)
	if captures == nil {
		return NamedNote{}, errors.Wrapf(ErrNoteName, "%q", s)
	}
	nk, err := namedKeyFromCaptures(s, captures[1], captures[2], ErrNoteName)
	if err != nil {
		return NamedNote{}, err
	}
	octave, err := strconv.Atoi(captures[3])
	if err != nil {
		return NamedNote{}, errors.Wrapf(ErrNoteName, "%q", s)
	}
	return NewNamedNote(nk, octave), nil
}

// NamedNoteStartingWith spells n with the given letter, moving the octave
// when the spelling crosses the B/C boundary.
func (n Note) NamedNoteStartingWith(l Letter) (NamedNote, bool) {
	k, _ := n.Decompose()
	nk, ok := k.NamedKeyStartingWith(l)
	if !ok {
		return NamedNote{}, false
	}
	octave := util.FloorDiv(int(n)-int(nk.Accidental)-int(l.Key()), 12) - 1
	return NewNamedNote(nk, octave), true
}

func (n Note) DefaultNamedNote() NamedNote {
	k, octave := n.Decompose()
	return NewNamedNote(k.DefaultNamedKey(), octave)
}
