package actions

import (
	"fmt"
	"time"
)

// Sink performs the real side effects of primitive actions. It is the only
// place the engine touches the operating system.
type Sink interface {
	ExecuteKeystroke(key string, modifiers []string) error
	ExecuteText(text string) error
	ExecuteLaunch(app string) error
	ExecuteShell(command string) error
	ExecuteVolume(op VolumeOp) error
	ExecuteMouse(button MouseButton, at *Point) error
	ExecuteMidi(msg MidiMessage) error
}

// Environment answers the external-state queries used by conditions
type Environment interface {
	// ActiveApp returns the name of the frontmost application
	ActiveApp() (string, error)

	// Now returns the wall-clock time
	Now() time.Time
}

// VolumeOperation is a volume control operation
type VolumeOperation string

const (
	VolumeUp     VolumeOperation = "up"
	VolumeDown   VolumeOperation = "down"
	VolumeMute   VolumeOperation = "mute"
	VolumeUnmute VolumeOperation = "unmute"
	VolumeToggle VolumeOperation = "toggle"
	VolumeSet    VolumeOperation = "set"
)

// VolumeOp describes a volume change. Amount is a step in percent for
// up/down and the absolute level (0-100) for set.
type VolumeOp struct {
	Op     VolumeOperation `json:"op"`
	Amount int             `json:"amount,omitempty"`
}

func (v VolumeOp) String() string {
	if v.Amount != 0 {
		return fmt.Sprintf("%s %d", v.Op, v.Amount)
	}
	return string(v.Op)
}

// MouseButton identifies a mouse button
type MouseButton string

const (
	MouseLeft   MouseButton = "left"
	MouseRight  MouseButton = "right"
	MouseMiddle MouseButton = "middle"
)

// Point is a screen position in pixels
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// MidiMessage describes an outgoing MIDI message
type MidiMessage struct {
	Port       string `json:"port,omitempty"`     // output port name, empty for the device's out port
	Type       string `json:"msg_type"`           // "note_on", "note_off", "cc", "pc"
	Channel    int    `json:"channel,omitempty"`  // 1-16, 0 means 1
	Note       int    `json:"note,omitempty"`     // 0-127
	Velocity   int    `json:"velocity,omitempty"` // 0-127
	Controller int    `json:"controller,omitempty"`
	Value      int    `json:"value,omitempty"`
	Program    int    `json:"program,omitempty"`
}
