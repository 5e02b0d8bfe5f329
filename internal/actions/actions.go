package actions

import (
	"fmt"
	"strings"
	"time"
)

// ActionType represents the type of action to execute
type ActionType string

const (
	ActionTypeKeystroke   ActionType = "keystroke"
	ActionTypeText        ActionType = "text"
	ActionTypeLaunch      ActionType = "launch"
	ActionTypeShell       ActionType = "shell"
	ActionTypeVolume      ActionType = "volume"
	ActionTypeModeChange  ActionType = "mode_change"
	ActionTypeSequence    ActionType = "sequence"
	ActionTypeDelay       ActionType = "delay"
	ActionTypeMouseClick  ActionType = "mouse_click"
	ActionTypeRepeat      ActionType = "repeat"
	ActionTypeConditional ActionType = "conditional"
	ActionTypeSendMidi    ActionType = "send_midi"
)

// IsComposite reports whether actions of this type contain other actions
func (t ActionType) IsComposite() bool {
	return t == ActionTypeSequence || t == ActionTypeRepeat || t == ActionTypeConditional
}

// Action is a node of an action tree. Type selects which fields are
// meaningful; Sequence, Repeat and Conditional are the only nodes with
// children. Actions are loaded once and never mutated afterwards.
type Action struct {
	Type ActionType `json:"type"`

	// Keystroke
	Key       string   `json:"key,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`

	// Text
	Text string `json:"text,omitempty"`

	// Launch: an application name, bundle id or executable
	App string `json:"app,omitempty"`

	// Shell
	Command string `json:"command,omitempty"`

	// Volume
	Volume *VolumeOp `json:"volume,omitempty"`

	// ModeChange
	Mode int `json:"mode,omitempty"`

	// Sequence
	Actions []Action `json:"actions,omitempty"`

	// Delay
	DurationMS int `json:"duration_ms,omitempty"`

	// MouseClick; At is optional and clicks at the current position when nil
	Button MouseButton `json:"button,omitempty"`
	At     *Point      `json:"at,omitempty"`

	// Repeat
	Count  int     `json:"count,omitempty"`
	Action *Action `json:"action,omitempty"`

	// Conditional
	Condition *Condition `json:"condition,omitempty"`
	Then      *Action    `json:"then,omitempty"`
	Else      *Action    `json:"else,omitempty"`

	// SendMidi
	Midi *MidiMessage `json:"midi,omitempty"`
}

// Duration returns the delay length of a Delay action
func (a *Action) Duration() time.Duration {
	return time.Duration(a.DurationMS) * time.Millisecond
}

func (a Action) String() string {
	switch a.Type {
	case ActionTypeKeystroke:
		if len(a.Modifiers) > 0 {
			return fmt.Sprintf("keystroke(%s+%s)", strings.Join(a.Modifiers, "+"), a.Key)
		}
		return fmt.Sprintf("keystroke(%s)", a.Key)
	case ActionTypeText:
		return fmt.Sprintf("text(%q)", a.Text)
	case ActionTypeLaunch:
		return fmt.Sprintf("launch(%s)", a.App)
	case ActionTypeShell:
		return fmt.Sprintf("shell(%q)", a.Command)
	case ActionTypeVolume:
		if a.Volume != nil {
			return fmt.Sprintf("volume(%s)", a.Volume)
		}
		return "volume()"
	case ActionTypeModeChange:
		return fmt.Sprintf("mode_change(%d)", a.Mode)
	case ActionTypeSequence:
		return fmt.Sprintf("sequence(%d)", len(a.Actions))
	case ActionTypeDelay:
		return fmt.Sprintf("delay(%s)", a.Duration())
	case ActionTypeMouseClick:
		if a.At != nil {
			return fmt.Sprintf("mouse_click(%s at %d,%d)", a.Button, a.At.X, a.At.Y)
		}
		return fmt.Sprintf("mouse_click(%s)", a.Button)
	case ActionTypeRepeat:
		return fmt.Sprintf("repeat(%d)", a.Count)
	case ActionTypeConditional:
		return "conditional"
	case ActionTypeSendMidi:
		if a.Midi != nil {
			return fmt.Sprintf("send_midi(%s)", a.Midi.Type)
		}
		return "send_midi()"
	default:
		return string(a.Type)
	}
}

// Keystroke creates a key press action, e.g. Keystroke("c", "cmd")
func Keystroke(key string, modifiers ...string) Action {
	return Action{Type: ActionTypeKeystroke, Key: key, Modifiers: modifiers}
}

// Text creates an action that types a string
func Text(text string) Action {
	return Action{Type: ActionTypeText, Text: text}
}

// Launch creates an application launch action
func Launch(app string) Action {
	return Action{Type: ActionTypeLaunch, App: app}
}

// Shell creates a shell command action
func Shell(command string) Action {
	return Action{Type: ActionTypeShell, Command: command}
}

// Volume creates a volume control action
func Volume(op VolumeOp) Action {
	return Action{Type: ActionTypeVolume, Volume: &op}
}

// ModeChange creates an action switching to the mode at index
func ModeChange(index int) Action {
	return Action{Type: ActionTypeModeChange, Mode: index}
}

// Sequence creates an action running children in order
func Sequence(children ...Action) Action {
	return Action{Type: ActionTypeSequence, Actions: children}
}

// Delay creates a pause
func Delay(d time.Duration) Action {
	return Action{Type: ActionTypeDelay, DurationMS: int(d / time.Millisecond)}
}

// MouseClick creates a click action; at may be nil
func MouseClick(button MouseButton, at *Point) Action {
	return Action{Type: ActionTypeMouseClick, Button: button, At: at}
}

// Repeat creates an action running a count times
func Repeat(a Action, count int) Action {
	return Action{Type: ActionTypeRepeat, Action: &a, Count: count}
}

// If creates a conditional action. elseAction may be nil.
func If(cond Condition, then Action, elseAction *Action) Action {
	return Action{Type: ActionTypeConditional, Condition: &cond, Then: &then, Else: elseAction}
}

// SendMidi creates an action emitting a MIDI message
func SendMidi(msg MidiMessage) Action {
	return Action{Type: ActionTypeSendMidi, Midi: &msg}
}
