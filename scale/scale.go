package scale

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/jsphweid/midiscore/key"
	"github.com/jsphweid/midiscore/util"
	"github.com/pkg/errors"
)

var (
	ErrEmptyScale  = errors.New("scale has no offsets")
	ErrOffsetRange = errors.New("scale offset out of range")
	ErrOffsetOrder = errors.New("scale offsets not strictly increasing")
	ErrScaleName   = errors.New("invalid scale name")
)

// Scale is an anchored, ordered set of semitone offsets. Elements holds one
// spelled key per degree and is computed once, at construction.
type Scale struct {
	anchor   key.NamedKey
	offsets  []int
	elements []key.NamedKey
	mode     string
}

// New validates offsets (each in [0,11], strictly increasing) and derives the
// spelling of every degree.
func New(anchor key.NamedKey, offsets []int) (*Scale, error) {
	if len(offsets) == 0 {
		return nil, errors.Wrapf(ErrEmptyScale, "anchor %s", anchor)
	}
	for i, offset := range offsets {
		if offset < 0 || offset > 11 {
			return nil, errors.Wrapf(ErrOffsetRange, "offset %d at degree %d must be within 0..11", offset, i)
		}
		if i > 0 && offsets[i-1] >= offset {
			return nil, errors.Wrapf(ErrOffsetOrder, "offset %d at degree %d follows %d", offset, i, offsets[i-1])
		}
	}

	own := make([]int, len(offsets))
	copy(own, offsets)
	return &Scale{
		anchor:   anchor,
		offsets:  own,
		elements: spellDegrees(anchor, own),
	}, nil
}

// spellDegrees gives consecutive degrees consecutive letters, starting from
// the anchor's letter. A degree that cannot be spelled with the next letter
// gets its default spelling and leaves the letter for the following degree.
func spellDegrees(anchor key.NamedKey, offsets []int) []key.NamedKey {
	letters := anchor.Letter.LettersInOrder()
	elements := make([]key.NamedKey, 0, len(offsets))
	for _, offset := range offsets {
		k := anchor.Key().Add(offset)
		if len(letters) > 0 {
			if nk, ok := k.NamedKeyStartingWith(letters[0]); ok {
				letters = letters[1:]
				elements = append(elements, nk)
				continue
			}
		}

		fallback := k.DefaultNamedKey()
		slog.Warn("could not spell scale degree with a consecutive letter, using default spelling",
			"anchor", anchor.String(),
			"offsets", offsets,
			"offset", offset,
			"fallback", fallback.String(),
		)
		elements = append(elements, fallback)
	}
	return elements
}

func (s *Scale) Anchor() key.NamedKey {
	return s.anchor
}

func (s *Scale) Len() int {
	return len(s.offsets)
}

func (s *Scale) Offsets() []int {
	res := make([]int, len(s.offsets))
	copy(res, s.offsets)
	return res
}

func (s *Scale) Elements() []key.NamedKey {
	res := make([]key.NamedKey, len(s.elements))
	copy(res, s.elements)
	return res
}

// locate splits a degree position into an index into the scale and a number
// of octaves above (or below) the base octave. Position -1 is the last degree,
// one octave down.
func (s *Scale) locate(position int) (int, int) {
	return util.Mod(position, len(s.offsets)), util.FloorDiv(position, len(s.offsets))
}

// NamedKey is the spelling of the degree at position, ignoring octaves.
func (s *Scale) NamedKey(position int) key.NamedKey {
	index, _ := s.locate(position)
	return s.elements[index]
}

// Note resolves a degree position to an absolute pitch, with the anchor's
// pitch class placed in octave.
func (s *Scale) Note(position, octave int) (key.Note, error) {
	index, extra := s.locate(position)
	base, err := key.Compose(s.anchor.Key(), octave+extra)
	if err != nil {
		return 0, errors.Wrapf(err, "degree %d octave %d of %s", position, octave, s)
	}
	n, err := base.Add(s.offsets[index])
	if err != nil {
		return 0, errors.Wrapf(err, "degree %d octave %d of %s", position, octave, s)
	}
	return n, nil
}

// NamedNote is Note, spelled with the letter cached for the degree.
func (s *Scale) NamedNote(position, octave int) (key.NamedNote, error) {
	n, err := s.Note(position, octave)
	if err != nil {
		return key.NamedNote{}, err
	}
	index, _ := s.locate(position)
	nn, ok := n.NamedNoteStartingWith(s.elements[index].Letter)
	if !ok {
		// unreachable: every element spells its own pitch class
		return n.DefaultNamedNote(), nil
	}
	return nn, nil
}

func (s *Scale) String() string {
	if s.mode != "" {
		return s.anchor.String() + s.mode
	}
	return fmt.Sprintf("%s%v", s.anchor, s.offsets)
}

// Modes accepted after the anchor in a scale name.
var Modes = map[string][]int{
	"maj":  {0, 2, 4, 5, 7, 9, 11},
	"min":  {0, 2, 3, 5, 7, 8, 11},
	"minh": {0, 2, 3, 5, 7, 8, 11},
	"minm": {0, 2, 3, 5, 7, 9, 11},
	"minn": {0, 2, 3, 5, 7, 8, 10},
}

var scaleNameRegex = regexp.MustCompile(`^([A-G](?:bb|b|##|#|x|♭|♯|𝄪|𝄫)?)([a-z]+)$`)

// Parse reads names such as "Cmaj" or "Ebmin". "min" is the harmonic minor.
func Parse(name string) (*Scale, error) {
	captures := scaleNameRegex.FindStringSubmatch(name)
	if captures == nil {
		return nil, errors.Wrapf(ErrScaleName, "%q", name)
	}
	anchor, err := key.ParseNamedKey(captures[1])
	if err != nil {
		return nil, errors.Wrapf(ErrScaleName, "%q: %v", name, err)
	}
	offsets, ok := Modes[captures[2]]
	if !ok {
		return nil, errors.Wrapf(ErrScaleName, "%q: unknown mode %q", name, captures[2])
	}
	s, err := New(anchor, offsets)
	if err != nil {
		return nil, err
	}
	s.mode = captures[2]
	return s, nil
}

func MustParse(name string) *Scale {
	s, err := Parse(name)
	if err != nil {
		panic("Could not parse scale: " + err.Error())
	}
	return s
}
