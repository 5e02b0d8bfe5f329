package midi

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"

	"github.com/PixPMusic/gopher-gesture/internal/actions"
)

// Encode builds the wire message for a send_midi action
func Encode(m actions.MidiMessage) (midi.Message, error) {
	channel := uint8(0) // 0-based on the wire
	if m.Channel > 0 {
		channel = uint8(m.Channel - 1)
	}
	if channel > 15 {
		return nil, fmt.Errorf("midi channel %d out of range 1-16", m.Channel)
	}

	switch m.Type {
	case "note_on":
		return midi.NoteOn(channel, data(m.Note), data(m.Velocity)), nil
	case "note_off":
		return midi.NoteOff(channel, data(m.Note)), nil
	case "cc":
		return midi.ControlChange(channel, data(m.Controller), data(m.Value)), nil
	case "pc":
		return midi.ProgramChange(channel, data(m.Program)), nil
	}
	return nil, fmt.Errorf("unknown message type: %s", m.Type)
}

func data(v int) uint8 {
	return uint8(v) & 0x7F
}
