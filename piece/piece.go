// Package piece assembles compiled tracks into a Standard MIDI File.
package piece

import (
	"bytes"
	"io"
	"sync"

	"github.com/jsphweid/midiscore/constants"
	"github.com/jsphweid/midiscore/track"
	"github.com/jsphweid/midiscore/util"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2/smf"
)

var ErrTempo = errors.New("tempo out of range")

// Piece is a tempo plus ordered tracks. It is read-only once assembled.
type Piece struct {
	BPM    uint8
	Tracks []track.Track
}

func New(bpm uint8, tracks ...track.Track) *Piece {
	return &Piece{BPM: bpm, Tracks: tracks}
}

// MicrosecondsPerBeat is 500000 at 120 bpm.
func (p *Piece) MicrosecondsPerBeat() (uint32, error) {
	if p.BPM == 0 {
		return 0, errors.Wrap(ErrTempo, "bpm must be positive")
	}
	us := uint32(500000) * 120 / uint32(p.BPM)
	if us > constants.MaxMicrosecondsPerBeat {
		return 0, errors.Wrapf(ErrTempo, "%d bpm needs %d microseconds per beat, more than fits in a tempo event", p.BPM, us)
	}
	return us, nil
}

func metaTempo(us uint32) smf.Message {
	return smf.Message{0xFF, 0x51, 0x03, byte(us >> 16), byte(us >> 8), byte(us)}
}

// HeaderTrack carries the tempo and a 4/4 time signature.
func (p *Piece) HeaderTrack() (smf.Track, error) {
	us, err := p.MicrosecondsPerBeat()
	if err != nil {
		return nil, err
	}
	var tr smf.Track
	tr.Add(0, metaTempo(us))
	tr.Add(0, smf.MetaMeter(4, 4))
	tr.Close(0)
	return tr, nil
}

// Duration is the tick at which the last track ends.
func (p *Piece) Duration() uint64 {
	var end uint64
	for _, t := range p.Tracks {
		end = util.Max(end, uint64(t.StartBeat())*constants.TicksPerBeat+t.Duration())
	}
	return end
}

// Channel is the MIDI channel of the track at index; it wraps after 16.
func Channel(index int) uint8 {
	return uint8(index % constants.NumChannels)
}

// compileTracks compiles every track concurrently and returns them in input
// order.
func (p *Piece) compileTracks(inst track.Instrument) ([]smf.Track, error) {
	compiled := make([]smf.Track, len(p.Tracks))
	errs := make([]error, len(p.Tracks))

	var wg sync.WaitGroup
	for i, t := range p.Tracks {
		wg.Add(1)
		go func(i int, t track.Track) {
			defer wg.Done()
			compiled[i], errs[i] = t.Compile(Channel(i), inst)
		}(i, t)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return compiled, nil
}

// SMF builds a format 1 file: the header track followed by one track per
// piece track, in order.
func (p *Piece) SMF(inst track.Instrument) (*smf.SMF, error) {
	header, err := p.HeaderTrack()
	if err != nil {
		return nil, err
	}
	compiled, err := p.compileTracks(inst)
	if err != nil {
		return nil, err
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(constants.TicksPerBeat)
	for _, tr := range append([]smf.Track{header}, compiled...) {
		if err := s.Add(tr); err != nil {
			return nil, errors.Wrap(err, "could not add track")
		}
	}
	return s, nil
}

// Bytes renders the whole file in memory.
func (p *Piece) Bytes(inst track.Instrument) ([]byte, error) {
	s, err := p.SMF(inst)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "could not encode midi")
	}
	return buf.Bytes(), nil
}

// Render hands the encoded piece to w in a single write. Errors from w are
// returned unchanged.
func (p *Piece) Render(w io.Writer, inst track.Instrument) (int64, error) {
	data, err := p.Bytes(inst)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}
