package midi

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

var ErrInvalidFile = errors.New("invalid midi file")

func ReadMidiFile(filepath string) (*smf.SMF, error) {
	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "error reading midi file")
	}
	s, err := ReadMidi(bytes.NewReader(dat))
	if err != nil {
		return nil, errors.Wrap(err, filepath)
	}
	return s, nil
}

func ReadMidi(r io.Reader) (s *smf.SMF, e error) {
	// the reader can panic on truncated input
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if p := recover(); p != nil {
			s = nil
			e = errors.Wrapf(ErrInvalidFile, "%v", p)
		}
	}()

	res, err := smf.ReadFrom(r)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidFile, "%v", err)
	}
	return res, nil
}

var endOfTrack = []byte{0xFF, 0x2F, 0x00}

func isNote(msg smf.Message) bool {
	return msg.Is(gomidi.NoteOnMsg) || msg.Is(gomidi.NoteOffMsg)
}

// Excerpt copies the part of s that starts at tick from. Events before from
// that are not notes (tempo, meter, program changes) are kept at the start of
// the excerpt. When limit is positive each track stops after limit note
// events.
func Excerpt(s *smf.SMF, from uint64, limit int) *smf.SMF {
	res := smf.New()
	res.TimeFormat = s.TimeFormat

	for _, track := range s.Tracks {
		var newTrack smf.Track
		var absTicks, lastTicks uint64
		var numNoteOnOff int
	TrackEventLoop:
		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			if bytes.Equal(evt.Message, endOfTrack) {
				continue
			}
			if absTicks < from {
				if !isNote(evt.Message) {
					newTrack.Add(0, evt.Message)
				}
				continue
			}
			if lastTicks < from {
				lastTicks = from
			}
			newTrack.Add(uint32(absTicks-lastTicks), evt.Message)
			lastTicks = absTicks
			if isNote(evt.Message) {
				numNoteOnOff++
				if limit > 0 && numNoteOnOff >= limit {
					break TrackEventLoop
				}
			}
		}
		newTrack.Close(0)
		res.Tracks = append(res.Tracks, newTrack)
	}

	return res
}

// Describe renders one line per event with its absolute tick.
func Describe(track smf.Track) []string {
	var res []string
	var absTicks uint64
	for _, evt := range track {
		absTicks += uint64(evt.Delta)
		res = append(res, fmt.Sprintf("%8d %s", absTicks, evt.Message.String()))
	}
	return res
}
