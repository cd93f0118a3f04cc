package chord

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jsphweid/midiscore/model"
	"github.com/jsphweid/midiscore/util"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

var ErrShape = errors.New("invalid chord shape")

// Shape is a set of scale degrees relative to a chord root, e.g. 0 2 4 for
// a triad.
type Shape []int

var Shapes = map[string]Shape{
	"triad":   {0, 2, 4},
	"seventh": {0, 2, 4, 6},
	"ninth":   {0, 2, 4, 6, 8},
	"sus2":    {0, 1, 4},
	"sus4":    {0, 3, 4},
	"power":   {0, 4},
}

func NewShape(degrees []int) (Shape, error) {
	if len(degrees) == 0 {
		return nil, errors.Wrap(ErrShape, "no degrees")
	}
	seen := make(map[int]bool)
	for _, d := range degrees {
		if seen[d] {
			return nil, errors.Wrapf(ErrShape, "degree %d repeated in %v", d, degrees)
		}
		seen[d] = true
	}
	res := make(Shape, len(degrees))
	copy(res, degrees)
	return res, nil
}

func ParseShape(name string) (Shape, error) {
	shape, ok := Shapes[name]
	if !ok {
		return nil, errors.Wrapf(ErrShape, "unknown shape %q, expected one of %s", name, strings.Join(util.GetSortedKeys(Shapes), ", "))
	}
	return NewShape(shape)
}

// Rooted returns the absolute degree positions of the shape built on root.
func (s Shape) Rooted(root int) []int {
	res := make([]int, len(s))
	for i, d := range s {
		res[i] = root + d
	}
	return res
}

func CreateChordKey(notes []uint8) string {
	sort.Slice(notes, func(i, j int) bool {
		return notes[i] < notes[j]
	})
	var res string
	for i, note := range notes {
		res += fmt.Sprintf("%v", note)
		if i < len(notes)-1 {
			res += "-"
		}
	}
	return res
}

func getChord(offset uint32, pressed map[uint8]int) model.Chord {
	notes := util.GetSortedKeys(pressed)
	return model.Chord{TicksOffset: offset, Notes: notes}
}

// GetChords lists, in tick order, every non-empty set of simultaneously
// sounding keys across all tracks of s.
func GetChords(s *smf.SMF) []model.Chord {
	var reducedEvents []model.ReducedEvent

	for _, events := range s.Tracks {
		var absTicks uint32
		for _, event := range events {
			absTicks += event.Delta
			var channel uint8
			var key uint8
			var velocity uint8
			switch {
			case event.Message.GetNoteOn(&channel, &key, &velocity):
				reducedEvents = append(reducedEvents, model.ReducedEvent{
					Offset:    absTicks,
					IsNoteOff: false,
					Note:      key,
				})
			case event.Message.GetNoteOff(&channel, &key, &velocity):
				reducedEvents = append(reducedEvents, model.ReducedEvent{
					Offset:    absTicks,
					IsNoteOff: true,
					Note:      key,
				})
			}
		}
	}

	// prioritize smaller offset values then note off
	sort.SliceStable(reducedEvents, func(i, j int) bool {
		if reducedEvents[i].Offset != reducedEvents[j].Offset {
			return reducedEvents[i].Offset < reducedEvents[j].Offset
		}
		return reducedEvents[i].IsNoteOff && !reducedEvents[j].IsNoteOff
	})

	// counted, two voices may hold the same key
	pressed := make(map[uint8]int)
	timestampToChords := make(map[uint32]model.Chord)
	for _, evt := range reducedEvents {
		if evt.IsNoteOff {
			pressed[evt.Note]--
			if pressed[evt.Note] <= 0 {
				delete(pressed, evt.Note)
			}
		} else {
			pressed[evt.Note]++
		}
		timestampToChords[evt.Offset] = getChord(evt.Offset, pressed)
	}

	var chords []model.Chord
	for _, offset := range util.GetSortedKeys(timestampToChords) {
		c := timestampToChords[offset]
		if len(c.Notes) > 0 {
			chords = append(chords, c)
		}
	}
	return chords
}
