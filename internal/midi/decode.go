package midi

import (
	"time"

	"gitlab.com/gomidi/midi/v2"

	"github.com/PixPMusic/gopher-gesture/internal/event"
)

// Decode converts a raw channel message into an event. A NoteOn with
// velocity 0 is a NoteOff. ok is false for messages the engine has no use
// for (SysEx, clock, malformed data).
func Decode(raw []byte, t time.Time) (ev event.MidiEvent, ok bool) {
	if len(raw) == 0 {
		return event.MidiEvent{}, false
	}
	msg := midi.Message(raw)
	var channel, key, value uint8

	switch {
	case msg.GetNoteOn(&channel, &key, &value):
		if value == 0 {
			ev = event.NewNoteOff(key, t)
		} else {
			ev = event.NewNoteOn(key, value, t)
		}

	case msg.GetNoteOff(&channel, &key, &value):
		ev = event.NewNoteOff(key, t)

	case msg.GetControlChange(&channel, &key, &value):
		ev = event.NewControlChange(key, value, t)

	case msg.GetPolyAfterTouch(&channel, &key, &value):
		ev = event.NewAftertouch(value, t)
		ev.Note = key

	case msg.GetAfterTouch(&channel, &value):
		ev = event.NewAftertouch(value, t)

	case msg.GetProgramChange(&channel, &value):
		ev = event.NewProgramChange(value, t)

	default:
		var relative int16
		var absolute uint16
		if !msg.GetPitchBend(&channel, &relative, &absolute) {
			return event.MidiEvent{}, false
		}
		ev = event.NewPitchBend(absolute, t)
	}

	ev.Channel = channel
	return ev, true
}
