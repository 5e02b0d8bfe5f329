package detect

import (
	"sort"
	"time"

	"github.com/PixPMusic/gopher-gesture/internal/event"
)

// Thresholds are the timing parameters of a single press. They are captured
// when the press starts, so changing settings never reclassifies a press that
// is already in flight.
type Thresholds struct {
	Short     time.Duration
	Hold      time.Duration
	DoubleTap time.Duration
}

type timingState int

const (
	statePressed timingState = iota
	// stateTapped is the second press of a double tap. Its release is
	// reported but not classified, and it does not arm a hold deadline.
	stateTapped
	stateReleased
)

// noteTiming is the state record for one note. Idle notes have no record.
type noteTiming struct {
	state      timingState
	velocity   uint8
	pressedAt  time.Time
	releasedAt time.Time
	holdAt     time.Time
	holdFired  bool
	th         Thresholds
}

// TimingDetector recognizes short/medium/long presses, holds and double taps.
// It is not safe for concurrent use; the engine drives it from one goroutine.
type TimingDetector struct {
	notes map[uint8]*noteTiming
}

// NewTimingDetector creates an empty detector
func NewTimingDetector() *TimingDetector {
	return &TimingDetector{notes: make(map[uint8]*noteTiming)}
}

// NoteOn registers a press. A press within the double-tap window of the
// previous release of the same note emits DoubleTap and consumes the pair.
func (d *TimingDetector) NoteOn(note, velocity uint8, now time.Time, th Thresholds) []event.ProcessedEvent {
	if n, ok := d.notes[note]; ok && n.state == stateReleased {
		gap := now.Sub(n.releasedAt)
		if gap <= n.th.DoubleTap {
			d.notes[note] = &noteTiming{
				state:     stateTapped,
				velocity:  velocity,
				pressedAt: now,
				th:        th,
			}
			return []event.ProcessedEvent{{
				Type:     event.DoubleTap,
				Note:     note,
				Velocity: velocity,
				Duration: gap,
				Time:     now,
			}}
		}
	}

	d.notes[note] = &noteTiming{
		state:     statePressed,
		velocity:  velocity,
		pressedAt: now,
		holdAt:    now.Add(th.Hold),
		th:        th,
	}
	return nil
}

// NoteOff registers a release and classifies the press by its duration.
// Releases of unknown or already released notes are ignored.
func (d *TimingDetector) NoteOff(note uint8, now time.Time) []event.ProcessedEvent {
	n, ok := d.notes[note]
	if !ok {
		return nil
	}

	dur := now.Sub(n.pressedAt)
	released := event.ProcessedEvent{
		Type:     event.PadReleased,
		Note:     note,
		Velocity: n.velocity,
		Duration: dur,
		Time:     now,
	}

	switch n.state {
	case stateTapped:
		delete(d.notes, note)
		return []event.ProcessedEvent{released}

	case statePressed:
		out := make([]event.ProcessedEvent, 0, 3)
		if dur >= n.th.Hold && !n.holdFired {
			// The tick did not run between the deadline and the release
			out = append(out, d.hold(note, n, n.holdAt))
		}

		press := event.ProcessedEvent{
			Note:     note,
			Velocity: n.velocity,
			Duration: dur,
			Time:     now,
		}
		switch {
		case dur < n.th.Short:
			press.Type = event.ShortPress
		case dur < n.th.Hold:
			press.Type = event.MediumPress
		default:
			press.Type = event.LongPress
		}
		out = append(out, press, released)

		n.state = stateReleased
		n.releasedAt = now
		return out
	}

	return nil
}

// Advance fires hold deadlines that have passed and forgets releases whose
// double-tap window has expired.
func (d *TimingDetector) Advance(now time.Time) []event.ProcessedEvent {
	if len(d.notes) == 0 {
		return nil
	}

	var out []event.ProcessedEvent
	for _, note := range d.sortedNotes() {
		n := d.notes[note]
		switch n.state {
		case statePressed:
			if !n.holdFired && !now.Before(n.holdAt) {
				out = append(out, d.hold(note, n, now))
			}
		case stateReleased:
			if now.Sub(n.releasedAt) > n.th.DoubleTap {
				delete(d.notes, note)
			}
		}
	}
	return out
}

// Tracked returns the number of notes with live state
func (d *TimingDetector) Tracked() int {
	return len(d.notes)
}

// Reset forgets all per-note state
func (d *TimingDetector) Reset() {
	d.notes = make(map[uint8]*noteTiming)
}

func (d *TimingDetector) hold(note uint8, n *noteTiming, at time.Time) event.ProcessedEvent {
	n.holdFired = true
	return event.ProcessedEvent{
		Type:     event.HoldDetected,
		Note:     note,
		Velocity: n.velocity,
		Duration: at.Sub(n.pressedAt),
		Time:     at,
	}
}

func (d *TimingDetector) sortedNotes() []uint8 {
	notes := make([]uint8, 0, len(d.notes))
	for note := range d.notes {
		notes = append(notes, note)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i] < notes[j] })
	return notes
}
