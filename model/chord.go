package model

type Notes = []uint8

// Chord is the set of keys sounding from TicksOffset until the next change.
type Chord struct {
	TicksOffset uint32
	Notes       Notes
}

type ReducedEvent struct {
	Offset    uint32
	IsNoteOff bool
	Note      uint8
}
