package event

import (
	"fmt"
	"strings"
	"time"
)

// Type identifies a recognized gesture
type Type int

const (
	ShortPress Type = iota
	MediumPress
	LongPress
	HoldDetected
	PadPressed
	PadReleased
	EncoderTurned
	DoubleTap
	ChordDetected
	AftertouchChanged
	PitchBendMoved
	ProgramChanged
)

func (t Type) String() string {
	switch t {
	case ShortPress:
		return "short_press"
	case MediumPress:
		return "medium_press"
	case LongPress:
		return "long_press"
	case HoldDetected:
		return "hold"
	case PadPressed:
		return "pad_pressed"
	case PadReleased:
		return "pad_released"
	case EncoderTurned:
		return "encoder_turned"
	case DoubleTap:
		return "double_tap"
	case ChordDetected:
		return "chord"
	case AftertouchChanged:
		return "aftertouch"
	case PitchBendMoved:
		return "pitch_bend"
	case ProgramChanged:
		return "program_change"
	default:
		return "unknown"
	}
}

// VelocityLevel is the coarse classification of a note velocity
type VelocityLevel int

const (
	Soft VelocityLevel = iota
	Medium
	Hard
)

func (l VelocityLevel) String() string {
	switch l {
	case Soft:
		return "soft"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return "unknown"
	}
}

// ParseVelocityLevel parses "soft", "medium" or "hard"
func ParseVelocityLevel(s string) (VelocityLevel, error) {
	switch strings.ToLower(s) {
	case "soft":
		return Soft, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return 0, fmt.Errorf("unknown velocity level %q", s)
}

// Direction is the rotation direction of an encoder
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// ParseDirection accepts forward/backward and the clockwise aliases
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "forward", "cw", "clockwise", "up":
		return Forward, nil
	case "backward", "ccw", "counter_clockwise", "counterclockwise", "down":
		return Backward, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// ProcessedEvent is a gesture produced by the event processor. Only the
// fields relevant to Type are populated.
type ProcessedEvent struct {
	Type Type

	Note     uint8
	Velocity uint8
	Level    VelocityLevel

	// Duration is the press length for press/release gestures, the time held
	// so far for HoldDetected, the release-to-press gap for DoubleTap and the
	// spread between the first and last press of a chord.
	Duration time.Duration

	Controller uint8
	Value      uint8
	Direction  Direction
	Delta      uint8

	// Notes is the ascending, deduplicated chord note set
	Notes []uint8

	Pressure uint8
	Bend     uint16
	Program  uint8

	Time time.Time
}

func (e ProcessedEvent) String() string {
	switch e.Type {
	case ShortPress, MediumPress, LongPress, PadReleased:
		return fmt.Sprintf("%s(%d, %s)", e.Type, e.Note, e.Duration)
	case HoldDetected, DoubleTap:
		return fmt.Sprintf("%s(%d)", e.Type, e.Note)
	case PadPressed:
		return fmt.Sprintf("%s(%d, vel=%d %s)", e.Type, e.Note, e.Velocity, e.Level)
	case EncoderTurned:
		return fmt.Sprintf("%s(%d, %s by %d to %d)", e.Type, e.Controller, e.Direction, e.Delta, e.Value)
	case ChordDetected:
		return fmt.Sprintf("%s(%v)", e.Type, e.Notes)
	case AftertouchChanged:
		return fmt.Sprintf("%s(%d)", e.Type, e.Pressure)
	case PitchBendMoved:
		return fmt.Sprintf("%s(%d)", e.Type, e.Bend)
	case ProgramChanged:
		return fmt.Sprintf("%s(%d)", e.Type, e.Program)
	default:
		return e.Type.String()
	}
}
