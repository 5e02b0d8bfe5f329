// Package event defines the raw MIDI input events and the gestures derived
// from them. Values in this package are plain data and never mutated after
// construction.
package event

import (
	"fmt"
	"time"
)

// Kind identifies the type of a raw MIDI event
type Kind int

const (
	NoteOn Kind = iota
	NoteOff
	ControlChange
	Aftertouch
	PitchBend
	ProgramChange
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "note_on"
	case NoteOff:
		return "note_off"
	case ControlChange:
		return "control_change"
	case Aftertouch:
		return "aftertouch"
	case PitchBend:
		return "pitch_bend"
	case ProgramChange:
		return "program_change"
	default:
		return "unknown"
	}
}

// MidiEvent is a decoded hardware message. Only the fields relevant to Kind
// are populated.
type MidiEvent struct {
	Kind       Kind
	Channel    uint8
	Note       uint8
	Velocity   uint8
	Controller uint8
	Value      uint8
	Pressure   uint8
	Bend       uint16 // 0-16383, 8192 is centre
	Program    uint8
	Time       time.Time
}

// NewNoteOn creates a NoteOn event
func NewNoteOn(note, velocity uint8, t time.Time) MidiEvent {
	return MidiEvent{Kind: NoteOn, Note: note, Velocity: velocity, Time: t}
}

// NewNoteOff creates a NoteOff event
func NewNoteOff(note uint8, t time.Time) MidiEvent {
	return MidiEvent{Kind: NoteOff, Note: note, Time: t}
}

// NewControlChange creates a ControlChange event
func NewControlChange(controller, value uint8, t time.Time) MidiEvent {
	return MidiEvent{Kind: ControlChange, Controller: controller, Value: value, Time: t}
}

// NewAftertouch creates a channel pressure event
func NewAftertouch(pressure uint8, t time.Time) MidiEvent {
	return MidiEvent{Kind: Aftertouch, Pressure: pressure, Time: t}
}

// NewPitchBend creates a pitch bend event
func NewPitchBend(value uint16, t time.Time) MidiEvent {
	return MidiEvent{Kind: PitchBend, Bend: value, Time: t}
}

// NewProgramChange creates a program change event
func NewProgramChange(program uint8, t time.Time) MidiEvent {
	return MidiEvent{Kind: ProgramChange, Program: program, Time: t}
}

func (e MidiEvent) String() string {
	switch e.Kind {
	case NoteOn:
		return fmt.Sprintf("note_on(%d, vel=%d)", e.Note, e.Velocity)
	case NoteOff:
		return fmt.Sprintf("note_off(%d)", e.Note)
	case ControlChange:
		return fmt.Sprintf("cc(%d=%d)", e.Controller, e.Value)
	case Aftertouch:
		return fmt.Sprintf("aftertouch(%d)", e.Pressure)
	case PitchBend:
		return fmt.Sprintf("pitch_bend(%d)", e.Bend)
	case ProgramChange:
		return fmt.Sprintf("program_change(%d)", e.Program)
	default:
		return "unknown"
	}
}
