// Package input reads the JSON description of a piece:
//
//	Piece    = { "bpm": uint8, "tracks": [ Track* ] }
//	Track    = { "id": string, "scale": string, "octave": int8, "start": Start,
//	             "notes": Notes, "chord"?: string | [int] }
//	Start    = uint | { <id of an earlier track>: int }
//	Notes    = int | null | "" | [ Notes* ] | { Duration: Notes, ... }
//	Duration = "3" | "1/3" | "/3" | ...
//
// Notes start at one beat. Each level of nested array halves the duration of
// its elements; an object key multiplies it by a fraction.
package input

import (
	"math"
	"os"
	"regexp"
	"strconv"

	"github.com/jsphweid/midiscore/chord"
	"github.com/jsphweid/midiscore/constants"
	"github.com/jsphweid/midiscore/piece"
	"github.com/jsphweid/midiscore/scale"
	"github.com/jsphweid/midiscore/track"
	"github.com/kaptinlin/jsonrepair"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

var (
	ErrSyntax         = errors.New("invalid JSON")
	ErrField          = errors.New("invalid field")
	ErrRange          = errors.New("value out of range")
	ErrStartReference = errors.New("invalid start reference")
	ErrDuplicateTrack = errors.New("duplicate track id")
	ErrDuration       = errors.New("invalid duration")
)

type options struct {
	repair bool
}

type Option func(*options)

// WithRepair fixes common JSON mistakes (trailing commas, single quotes,
// missing brackets) before parsing.
func WithRepair() Option {
	return func(o *options) {
		o.repair = true
	}
}

func ParseFile(path string, opts ...Option) (*piece.Piece, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", path)
	}
	p, err := Parse(data, opts...)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return p, nil
}

func Parse(data []byte, opts ...Option) (*piece.Piece, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.repair {
		fixed, err := jsonrepair.JSONRepair(string(data))
		if err != nil {
			return nil, errors.Wrapf(ErrSyntax, "could not repair: %v", err)
		}
		data = []byte(fixed)
	}
	if !gjson.ValidBytes(data) {
		return nil, errors.Wrap(ErrSyntax, "could not parse JSON")
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.Wrap(ErrField, "piece should be an object")
	}

	bpm, err := getInt(root, "bpm", 0, math.MaxUint8)
	if err != nil {
		return nil, err
	}

	tracksJSON := root.Get("tracks")
	if !tracksJSON.Exists() {
		return nil, errors.Wrap(ErrField, "tracks missing")
	}
	if !tracksJSON.IsArray() {
		return nil, errors.Wrap(ErrField, "tracks should be an array")
	}

	resolved := newSymbolTable()
	var tracks []track.Track
	var parseErr error
	tracksJSON.ForEach(func(_, value gjson.Result) bool {
		t, err := parseTrack(value, resolved)
		if err != nil {
			parseErr = errors.Wrapf(err, "track %d", len(tracks))
			return false
		}
		resolved.add(t.Name(), t.StartBeat())
		tracks = append(tracks, t)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return piece.New(uint8(bpm), tracks...), nil
}

// symbolTable holds the resolved start of every track declared so far, so a
// track can only refer to the ones before it.
type symbolTable struct {
	starts map[string]uint32
}

func newSymbolTable() *symbolTable {
	return &symbolTable{starts: make(map[string]uint32)}
}

func (s *symbolTable) add(id string, start uint32) {
	s.starts[id] = start
}

func (s *symbolTable) lookup(id string) (uint32, bool) {
	start, ok := s.starts[id]
	return start, ok
}

func parseTrack(value gjson.Result, resolved *symbolTable) (track.Track, error) {
	if !value.IsObject() {
		return nil, errors.Wrap(ErrField, "each track should be an object")
	}

	idJSON := value.Get("id")
	if !idJSON.Exists() {
		return nil, errors.Wrap(ErrField, "id missing")
	}
	if idJSON.Type != gjson.String {
		return nil, errors.Wrapf(ErrField, "id should be a string, got %s", idJSON.Raw)
	}
	id := idJSON.Str
	if _, ok := resolved.lookup(id); ok {
		return nil, errors.Wrapf(ErrDuplicateTrack, "%q", id)
	}

	scaleJSON := value.Get("scale")
	if !scaleJSON.Exists() {
		return nil, errors.Wrapf(ErrField, "track %q: scale missing", id)
	}
	if scaleJSON.Type != gjson.String {
		return nil, errors.Wrapf(ErrField, "track %q: scale should be a string, got %s", id, scaleJSON.Raw)
	}
	s, err := scale.Parse(scaleJSON.Str)
	if err != nil {
		return nil, errors.Wrapf(err, "track %q", id)
	}

	octave, err := getInt(value, "octave", math.MinInt8, math.MaxInt8)
	if err != nil {
		return nil, errors.Wrapf(err, "track %q", id)
	}

	startJSON := value.Get("start")
	if !startJSON.Exists() {
		return nil, errors.Wrapf(ErrField, "track %q: start missing", id)
	}
	start, err := parseStart(startJSON, resolved)
	if err != nil {
		return nil, errors.Wrapf(err, "track %q", id)
	}

	notesJSON := value.Get("notes")
	if !notesJSON.Exists() {
		return nil, errors.Wrapf(ErrField, "track %q: notes missing", id)
	}
	entries, err := parseNotes(notesJSON, constants.TicksPerBeat, false)
	if err != nil {
		return nil, errors.Wrapf(err, "track %q", id)
	}

	chordJSON := value.Get("chord")
	if !chordJSON.Exists() {
		notes := make([]track.TimedNote, len(entries))
		for i, e := range entries {
			notes[i] = track.TimedNote{Position: e.position, Sounding: e.sounding, Duration: e.duration}
		}
		return &track.Voice{ID: id, Scale: s, Octave: int(octave), Start: start, Notes: notes}, nil
	}

	shape, err := parseShape(chordJSON)
	if err != nil {
		return nil, errors.Wrapf(err, "track %q", id)
	}
	chords := make([]track.TimedChord, len(entries))
	for i, e := range entries {
		chords[i] = track.TimedChord{Positions: shape.Rooted(e.position), Played: e.sounding, Duration: e.duration}
	}
	return &track.ChordVoice{ID: id, Scale: s, Octave: int(octave), Start: start, Chords: chords}, nil
}

func parseStart(value gjson.Result, resolved *symbolTable) (uint32, error) {
	switch {
	case value.Type == gjson.Number:
		start, err := toInt(value, 0, math.MaxUint32)
		if err != nil {
			return 0, errors.Wrap(err, "start")
		}
		return uint32(start), nil

	case value.IsObject():
		var refs int
		var start int64
		var refErr error
		value.ForEach(func(k, v gjson.Result) bool {
			refs++
			reference, ok := resolved.lookup(k.String())
			if !ok {
				refErr = errors.Wrapf(ErrStartReference, "no earlier track with id %q", k.String())
				return false
			}
			offset, err := toInt(v, math.MinInt32, math.MaxInt32)
			if err != nil {
				refErr = errors.Wrapf(err, "offset to track %q", k.String())
				return false
			}
			start = int64(reference) + offset
			return true
		})
		if refErr != nil {
			return 0, refErr
		}
		if refs != 1 {
			return 0, errors.Wrapf(ErrStartReference, "expected exactly one reference, got %d", refs)
		}
		if start < 0 || start > math.MaxUint32 {
			return 0, errors.Wrapf(ErrRange, "start resolves to %d", start)
		}
		return uint32(start), nil
	}
	return 0, errors.Wrapf(ErrField, "start should be an int or an object, got %s", value.Raw)
}

func parseShape(value gjson.Result) (chord.Shape, error) {
	if value.Type == gjson.String {
		return chord.ParseShape(value.Str)
	}
	if !value.IsArray() {
		return nil, errors.Wrapf(ErrField, "chord should be a shape name or an array of degrees, got %s", value.Raw)
	}
	var degrees []int
	for _, d := range value.Array() {
		degree, err := toInt(d, math.MinInt8, math.MaxInt8)
		if err != nil {
			return nil, errors.Wrap(err, "chord degree")
		}
		degrees = append(degrees, int(degree))
	}
	return chord.NewShape(degrees)
}

type entry struct {
	position int
	sounding bool
	duration uint32
}

// matches e.g. 3, 1/3, /3.
var durationRegex = regexp.MustCompile(`^(\d+)?(?:/(\d+))?$`)

func parseNotes(value gjson.Result, duration uint32, halveArray bool) ([]entry, error) {
	leaf := value.Type == gjson.Number || value.Type == gjson.Null || value.Type == gjson.String
	if leaf && duration == 0 {
		return nil, errors.Wrapf(ErrDuration, "%s is shorter than one tick", value.Raw)
	}

	switch {
	case value.Type == gjson.Number:
		position, err := toInt(value, math.MinInt8, math.MaxInt8)
		if err != nil {
			return nil, errors.Wrap(err, "note")
		}
		return []entry{{position: int(position), sounding: true, duration: duration}}, nil

	case value.Type == gjson.Null:
		return []entry{{duration: duration}}, nil

	case value.Type == gjson.String:
		if value.Str != "" {
			return nil, errors.Wrapf(ErrField, "only an empty string can be used to signify a silence, got %s", value.Raw)
		}
		return []entry{{duration: duration}}, nil

	case value.IsArray():
		childDuration := duration
		if halveArray {
			childDuration = duration / 2
		}
		var entries []entry
		for _, v := range value.Array() {
			deeper, err := parseNotes(v, childDuration, true)
			if err != nil {
				return nil, err
			}
			entries = append(entries, deeper...)
		}
		return entries, nil

	case value.IsObject():
		var entries []entry
		var objErr error
		value.ForEach(func(k, v gjson.Result) bool {
			scaled, err := scaleDuration(k.String(), duration)
			if err != nil {
				objErr = err
				return false
			}
			deeper, err := parseNotes(v, scaled, false)
			if err != nil {
				objErr = err
				return false
			}
			entries = append(entries, deeper...)
			return true
		})
		if objErr != nil {
			return nil, objErr
		}
		return entries, nil
	}
	return nil, errors.Wrapf(ErrField, "notes must be a number, string, null, array or object, got %s", value.Raw)
}

func scaleDuration(specifier string, duration uint32) (uint32, error) {
	captures := durationRegex.FindStringSubmatch(specifier)
	if captures == nil {
		return 0, errors.Wrapf(ErrDuration, "invalid duration specifier %q", specifier)
	}
	numerator, denominator := uint64(1), uint64(1)
	var err error
	if captures[1] != "" {
		if numerator, err = strconv.ParseUint(captures[1], 10, 32); err != nil {
			return 0, errors.Wrapf(ErrDuration, "numerator of %q", specifier)
		}
	}
	if captures[2] != "" {
		if denominator, err = strconv.ParseUint(captures[2], 10, 32); err != nil {
			return 0, errors.Wrapf(ErrDuration, "denominator of %q", specifier)
		}
	}
	if denominator == 0 {
		return 0, errors.Wrapf(ErrDuration, "zero denominator in %q", specifier)
	}
	scaled := uint64(duration) * numerator / denominator
	if scaled > track.MaxDelta {
		return 0, errors.Wrapf(ErrDuration, "%q makes a duration of %d ticks", specifier, scaled)
	}
	return uint32(scaled), nil
}

func getInt(parent gjson.Result, field string, min, max int64) (int64, error) {
	value := parent.Get(field)
	if !value.Exists() {
		return 0, errors.Wrapf(ErrField, "%s missing", field)
	}
	n, err := toInt(value, min, max)
	if err != nil {
		return 0, errors.Wrap(err, field)
	}
	return n, nil
}

func toInt(value gjson.Result, min, max int64) (int64, error) {
	if value.Type != gjson.Number || value.Num != math.Trunc(value.Num) {
		return 0, errors.Wrapf(ErrField, "expected an integer, got %s", value.Raw)
	}
	if value.Num < float64(min) || value.Num > float64(max) {
		return 0, errors.Wrapf(ErrRange, "%s is not within %d..%d", value.Raw, min, max)
	}
	return int64(value.Num), nil
}
