// Package mapping matches gestures against triggers and resolves the action
// bound to the first matching mapping.
package mapping

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/PixPMusic/gopher-gesture/internal/actions"
	"github.com/PixPMusic/gopher-gesture/internal/event"
)

// TriggerType selects which gesture a trigger matches
type TriggerType string

const (
	TriggerNote          TriggerType = "note"
	TriggerVelocityRange TriggerType = "velocity_range"
	TriggerShortPress    TriggerType = "short_press"
	TriggerMediumPress   TriggerType = "medium_press"
	TriggerLongPress     TriggerType = "long_press"
	TriggerHold          TriggerType = "hold"
	TriggerRelease       TriggerType = "release"
	TriggerDoubleTap     TriggerType = "double_tap"
	TriggerChord         TriggerType = "chord"
	TriggerEncoder       TriggerType = "encoder"
	TriggerAftertouch    TriggerType = "aftertouch"
	TriggerPitchBend     TriggerType = "pitch_bend"
	TriggerProgramChange TriggerType = "program_change"
)

var triggerEvents = map[TriggerType]event.Type{
	TriggerNote:          event.PadPressed,
	TriggerVelocityRange: event.PadPressed,
	TriggerShortPress:    event.ShortPress,
	TriggerMediumPress:   event.MediumPress,
	TriggerLongPress:     event.LongPress,
	TriggerHold:          event.HoldDetected,
	TriggerRelease:       event.PadReleased,
	TriggerDoubleTap:     event.DoubleTap,
	TriggerChord:         event.ChordDetected,
	TriggerEncoder:       event.EncoderTurned,
	TriggerAftertouch:    event.AftertouchChanged,
	TriggerPitchBend:     event.PitchBendMoved,
	TriggerProgramChange: event.ProgramChanged,
}

// Trigger is a predicate over a gesture. Nil fields are wildcards; ranges
// are inclusive.
type Trigger struct {
	Type TriggerType `json:"type"`

	Note  *uint8 `json:"note,omitempty"`
	Notes []int  `json:"notes,omitempty"`

	VelocityMin *uint8 `json:"velocity_min,omitempty"`
	VelocityMax *uint8 `json:"velocity_max,omitempty"`
	Level       string `json:"level,omitempty"`

	MinDurationMS *int `json:"min_duration_ms,omitempty"`
	MaxDurationMS *int `json:"max_duration_ms,omitempty"`

	// WindowMS narrows the double-tap gap or chord window for this trigger.
	// It cannot widen the window the detectors use.
	WindowMS *int `json:"window_ms,omitempty"`

	Controller *uint8 `json:"controller,omitempty"`
	Direction  string `json:"direction,omitempty"`
	ValueMin   *int   `json:"value_min,omitempty"`
	ValueMax   *int   `json:"value_max,omitempty"`

	Program *uint8 `json:"program,omitempty"`
}

// Matches reports whether the gesture satisfies the trigger
func (t *Trigger) Matches(ev event.ProcessedEvent) bool {
	want, ok := triggerEvents[t.Type]
	if !ok || want != ev.Type {
		return false
	}

	switch t.Type {
	case TriggerNote, TriggerVelocityRange:
		return matchU8(t.Note, ev.Note) && t.matchVelocity(ev)

	case TriggerShortPress, TriggerMediumPress, TriggerLongPress, TriggerHold, TriggerRelease:
		return matchU8(t.Note, ev.Note) && t.matchVelocity(ev) && t.matchDuration(ev.Duration)

	case TriggerDoubleTap:
		return matchU8(t.Note, ev.Note) && t.matchWindow(ev.Duration)

	case TriggerChord:
		return slices.Equal(sortedNotes(t.Notes), ev.Notes) && t.matchWindow(ev.Duration)

	case TriggerEncoder:
		if !matchU8(t.Controller, ev.Controller) || !t.matchValue(int(ev.Value)) {
			return false
		}
		if t.Direction != "" {
			dir, err := event.ParseDirection(t.Direction)
			if err != nil || dir != ev.Direction {
				return false
			}
		}
		return true

	case TriggerAftertouch:
		return t.matchValue(int(ev.Pressure))

	case TriggerPitchBend:
		return t.matchValue(int(ev.Bend))

	case TriggerProgramChange:
		return matchU8(t.Program, ev.Program)
	}
	return false
}

func (t *Trigger) matchVelocity(ev event.ProcessedEvent) bool {
	if t.VelocityMin != nil && ev.Velocity < *t.VelocityMin {
		return false
	}
	if t.VelocityMax != nil && ev.Velocity > *t.VelocityMax {
		return false
	}
	if t.Level != "" {
		level, err := event.ParseVelocityLevel(t.Level)
		if err != nil || level != ev.Level {
			return false
		}
	}
	return true
}

func (t *Trigger) matchDuration(d time.Duration) bool {
	if t.MinDurationMS != nil && d < msDuration(*t.MinDurationMS) {
		return false
	}
	if t.MaxDurationMS != nil && d > msDuration(*t.MaxDurationMS) {
		return false
	}
	return true
}

func (t *Trigger) matchWindow(gap time.Duration) bool {
	return t.WindowMS == nil || gap <= msDuration(*t.WindowMS)
}

func (t *Trigger) matchValue(v int) bool {
	if t.ValueMin != nil && v < *t.ValueMin {
		return false
	}
	if t.ValueMax != nil && v > *t.ValueMax {
		return false
	}
	return true
}

// Validate checks the trigger's fields. Every problem found is returned as
// an *actions.FieldError rooted at path.
func (t *Trigger) Validate(path string) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, &actions.FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if _, ok := triggerEvents[t.Type]; !ok {
		if t.Type == "" {
			fail("missing trigger type")
		} else {
			fail("unknown trigger type %q", t.Type)
		}
		return errs
	}

	checkNote := func(name string, n *uint8) {
		if n != nil && *n > 127 {
			fail("%s %d out of range 0-127", name, *n)
		}
	}
	checkNote("note", t.Note)
	checkNote("velocity_min", t.VelocityMin)
	checkNote("velocity_max", t.VelocityMax)
	checkNote("controller", t.Controller)
	checkNote("program", t.Program)

	if t.VelocityMin != nil && t.VelocityMax != nil && *t.VelocityMin > *t.VelocityMax {
		fail("velocity_min %d above velocity_max %d", *t.VelocityMin, *t.VelocityMax)
	}
	if t.Level != "" {
		if _, err := event.ParseVelocityLevel(t.Level); err != nil {
			fail("%v", err)
		}
	}
	if t.Type == TriggerVelocityRange && t.VelocityMin == nil && t.VelocityMax == nil && t.Level == "" {
		fail("velocity_range needs velocity_min, velocity_max or level")
	}
	if t.MinDurationMS != nil && t.MaxDurationMS != nil && *t.MinDurationMS > *t.MaxDurationMS {
		fail("min_duration_ms above max_duration_ms")
	}
	if t.WindowMS != nil && *t.WindowMS < 0 {
		fail("window_ms cannot be negative")
	}
	if t.ValueMin != nil && t.ValueMax != nil && *t.ValueMin > *t.ValueMax {
		fail("value_min above value_max")
	}
	if t.Direction != "" {
		if _, err := event.ParseDirection(t.Direction); err != nil {
			fail("%v", err)
		}
	}

	if t.Type == TriggerChord {
		if len(t.Notes) < 2 {
			fail("chord needs at least two notes")
		}
		seen := make(map[int]bool, len(t.Notes))
		for _, n := range t.Notes {
			if n < 0 || n > 127 {
				fail("chord note %d out of range 0-127", n)
			}
			if seen[n] {
				fail("chord note %d listed twice", n)
			}
			seen[n] = true
		}
	}

	return errs
}

func (t Trigger) String() string {
	switch {
	case t.Type == TriggerChord:
		return fmt.Sprintf("%s%v", t.Type, t.Notes)
	case t.Note != nil:
		return fmt.Sprintf("%s(%d)", t.Type, *t.Note)
	case t.Controller != nil:
		return fmt.Sprintf("%s(cc %d)", t.Type, *t.Controller)
	default:
		return string(t.Type)
	}
}

func matchU8(want *uint8, got uint8) bool {
	return want == nil || *want == got
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func sortedNotes(notes []int) []uint8 {
	out := make([]uint8, len(notes))
	for i, n := range notes {
		out[i] = uint8(n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
