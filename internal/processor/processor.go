// Package processor turns raw MIDI events into gestures by driving the
// detectors and applying the stateless controller rules.
package processor

import (
	"time"

	"github.com/PixPMusic/gopher-gesture/internal/config"
	"github.com/PixPMusic/gopher-gesture/internal/detect"
	"github.com/PixPMusic/gopher-gesture/internal/event"
)

// Processor is the per-device gesture pipeline. It is not safe for
// concurrent use; the engine owns it from a single goroutine.
type Processor struct {
	timing *detect.TimingDetector
	chord  *detect.ChordDetector

	// last controller value per channel/controller pair
	encoders map[uint16]uint8

	dropped uint64

	// last is the latest time the detectors were advanced to
	last time.Time
}

// New creates an idle processor
func New() *Processor {
	return &Processor{
		timing:   detect.NewTimingDetector(),
		chord:    detect.NewChordDetector(),
		encoders: make(map[uint16]uint8),
	}
}

// Process handles one raw event. Timer transitions due before the event are
// emitted first so the output stays in time order. An event stamped before
// the last advance is handled as if it arrived at that time.
func (p *Processor) Process(ev event.MidiEvent, s config.AdvancedSettings) []event.ProcessedEvent {
	if ev.Time.Before(p.last) {
		ev.Time = p.last
	}
	out := p.Tick(ev.Time, s)

	switch ev.Kind {
	case event.NoteOn:
		if ev.Velocity == 0 {
			return append(out, p.noteOff(ev, s)...)
		}
		out = append(out, event.ProcessedEvent{
			Type:     event.PadPressed,
			Note:     ev.Note,
			Velocity: ev.Velocity,
			Level:    s.Classify(ev.Velocity),
			Time:     ev.Time,
		})
		out = append(out, p.label(p.timing.NoteOn(ev.Note, ev.Velocity, ev.Time, s.Thresholds()), s)...)
		out = append(out, p.chord.NoteOn(ev.Note, ev.Time, s.ChordTimeout())...)
		return out

	case event.NoteOff:
		return append(out, p.noteOff(ev, s)...)

	case event.ControlChange:
		if turned, ok := p.encoder(ev); ok {
			out = append(out, turned)
		}
		return out

	case event.Aftertouch:
		return append(out, event.ProcessedEvent{
			Type:     event.AftertouchChanged,
			Note:     ev.Note,
			Pressure: ev.Pressure,
			Time:     ev.Time,
		})

	case event.PitchBend:
		return append(out, event.ProcessedEvent{
			Type: event.PitchBendMoved,
			Bend: ev.Bend,
			Time: ev.Time,
		})

	case event.ProgramChange:
		return append(out, event.ProcessedEvent{
			Type:    event.ProgramChanged,
			Program: ev.Program,
			Time:    ev.Time,
		})
	}

	p.dropped++
	return out
}

// Tick advances the detectors to now without an incoming event. It fires
// due holds and expires stale releases during device silence. Time never
// moves backwards: a now before the last advance is a no-op.
func (p *Processor) Tick(now time.Time, s config.AdvancedSettings) []event.ProcessedEvent {
	if now.Before(p.last) {
		return nil
	}
	p.last = now
	return p.label(p.timing.Advance(now), s)
}

// Reset forgets all per-note and per-controller state
func (p *Processor) Reset() {
	p.timing.Reset()
	p.chord.Reset()
	p.encoders = make(map[uint16]uint8)
	p.last = time.Time{}
}

// Dropped returns the number of events of a kind no rule handles
func (p *Processor) Dropped() uint64 {
	return p.dropped
}

// Pending returns the number of notes with live timing state
func (p *Processor) Pending() int {
	return p.timing.Tracked()
}

func (p *Processor) noteOff(ev event.MidiEvent, s config.AdvancedSettings) []event.ProcessedEvent {
	p.chord.NoteOff(ev.Note)
	return p.label(p.timing.NoteOff(ev.Note, ev.Time), s)
}

// encoder derives a turn from consecutive values of one controller. The
// first value only seeds the baseline and a repeated value is not a turn.
func (p *Processor) encoder(ev event.MidiEvent) (event.ProcessedEvent, bool) {
	key := uint16(ev.Channel)<<8 | uint16(ev.Controller)
	last, seen := p.encoders[key]
	p.encoders[key] = ev.Value
	if !seen || last == ev.Value {
		return event.ProcessedEvent{}, false
	}

	turned := event.ProcessedEvent{
		Type:       event.EncoderTurned,
		Controller: ev.Controller,
		Value:      ev.Value,
		Time:       ev.Time,
	}
	switch {
	case last == 127 && ev.Value == 0:
		turned.Direction, turned.Delta = event.Forward, 1
	case last == 0 && ev.Value == 127:
		turned.Direction, turned.Delta = event.Backward, 1
	case ev.Value > last:
		turned.Direction, turned.Delta = event.Forward, ev.Value-last
	default:
		turned.Direction, turned.Delta = event.Backward, last-ev.Value
	}
	return turned, true
}

// label fills in the velocity level of note gestures
func (p *Processor) label(events []event.ProcessedEvent, s config.AdvancedSettings) []event.ProcessedEvent {
	for i := range events {
		events[i].Level = s.Classify(events[i].Velocity)
	}
	return events
}
