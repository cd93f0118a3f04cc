// Package track compiles one voice of scale-degree entries into a sequence of
// delta-timed MIDI events.
package track

import (
	"github.com/jsphweid/midiscore/constants"
	"github.com/jsphweid/midiscore/scale"
	"github.com/jsphweid/midiscore/util"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

var (
	ErrChannel = errors.New("invalid MIDI channel")
	ErrDelta   = errors.New("delta time overflow")
)

// Largest delta time a variable-length quantity can carry.
const MaxDelta = 0x0FFFFFFF

// Instrument is the program selected at the start of every track and the
// velocity of its notes.
type Instrument struct {
	Program  uint8
	Velocity uint8
}

var DefaultInstrument = Instrument{
	Program:  constants.DefaultProgram,
	Velocity: constants.DefaultVelocity,
}

// Track is either a *Voice or a *ChordVoice.
type Track interface {
	Name() string
	// StartBeat is the offset of the first entry, in beats.
	StartBeat() uint32
	// Duration is the sum of all entry durations, in ticks, excluding the
	// start offset.
	Duration() uint64
	Compile(channel uint8, inst Instrument) (smf.Track, error)

	sealed()
}

// TimedNote is a degree position held for Duration ticks. A TimedNote that
// is not Sounding is a rest.
type TimedNote struct {
	Position int
	Sounding bool
	Duration uint32
}

func Note(position int, duration uint32) TimedNote {
	return TimedNote{Position: position, Sounding: true, Duration: duration}
}

func Rest(duration uint32) TimedNote {
	return TimedNote{Duration: duration}
}

// Voice is a monophonic line of degrees in a scale.
type Voice struct {
	ID     string
	Scale  *scale.Scale
	Octave int
	Start  uint32
	Notes  []TimedNote
}

func (v *Voice) Name() string      { return v.ID }
func (v *Voice) StartBeat() uint32 { return v.Start }
func (v *Voice) sealed()           {}

func (v *Voice) Duration() uint64 {
	durations := make([]uint32, len(v.Notes))
	for i, n := range v.Notes {
		durations[i] = n.Duration
	}
	return util.Sum(durations)
}

func (v *Voice) Compile(channel uint8, inst Instrument) (smf.Track, error) {
	steps := make([]step, len(v.Notes))
	for i, n := range v.Notes {
		steps[i] = step{duration: n.Duration}
		if n.Sounding {
			steps[i].positions = []int{n.Position}
		}
	}
	return compile(v.ID, v.Scale, v.Octave, v.Start, steps, channel, inst)
}

// TimedChord sounds every position in Positions together when Played.
type TimedChord struct {
	Positions []int
	Played    bool
	Duration  uint32
}

func Chord(positions []int, duration uint32) TimedChord {
	return TimedChord{Positions: positions, Played: true, Duration: duration}
}

// ChordVoice is a line of chords; each chord starts and stops as one unit.
type ChordVoice struct {
	ID     string
	Scale  *scale.Scale
	Octave int
	Start  uint32
	Chords []TimedChord
}

func (c *ChordVoice) Name() string      { return c.ID }
func (c *ChordVoice) StartBeat() uint32 { return c.Start }
func (c *ChordVoice) sealed()           {}

func (c *ChordVoice) Duration() uint64 {
	durations := make([]uint32, len(c.Chords))
	for i, ch := range c.Chords {
		durations[i] = ch.Duration
	}
	return util.Sum(durations)
}

func (c *ChordVoice) Compile(channel uint8, inst Instrument) (smf.Track, error) {
	steps := make([]step, len(c.Chords))
	for i, ch := range c.Chords {
		steps[i] = step{duration: ch.Duration}
		if ch.Played {
			steps[i].positions = ch.Positions
		}
	}
	return compile(c.ID, c.Scale, c.Octave, c.Start, steps, channel, inst)
}

// step is an entry of either track kind: no positions means silence.
type step struct {
	positions []int
	duration  uint32
}

func compile(id string, s *scale.Scale, octave int, start uint32, steps []step, channel uint8, inst Instrument) (smf.Track, error) {
	if channel >= constants.NumChannels {
		return nil, errors.Wrapf(ErrChannel, "track %q: channel %d", id, channel)
	}

	var tr smf.Track
	tr.Add(0, midi.ProgramChange(channel, inst.Program))

	// delta carried to the next event; rests only grow it
	pending := uint64(start) * constants.TicksPerBeat

	for i, st := range steps {
		if len(st.positions) == 0 {
			pending += uint64(st.duration)
			continue
		}
		if pending > MaxDelta || st.duration > MaxDelta {
			return nil, errors.Wrapf(ErrDelta, "track %q entry %d", id, i)
		}

		keys := make([]uint8, len(st.positions))
		for j, position := range st.positions {
			n, err := s.Note(position, octave)
			if err != nil {
				return nil, errors.Wrapf(err, "track %q entry %d", id, i)
			}
			keys[j] = uint8(n)
		}

		for j, k := range keys {
			delta := uint32(0)
			if j == 0 {
				delta = uint32(pending)
			}
			tr.Add(delta, midi.NoteOn(channel, k, inst.Velocity))
		}
		pending = 0

		for j, k := range keys {
			delta := uint32(0)
			if j == 0 {
				delta = st.duration
			}
			tr.Add(delta, midi.NoteOff(channel, k))
		}
	}

	tr.Close(0)
	return tr, nil
}
