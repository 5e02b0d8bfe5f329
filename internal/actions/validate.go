package actions

import (
	"fmt"
	"strings"
)

// MaxDepth bounds the nesting of composite actions
const MaxDepth = 32

// MaxRepeat bounds the count of a single repeat action
const MaxRepeat = 1000

var knownModifiers = map[string]bool{
	"cmd": true, "command": true, "super": true, "meta": true, "win": true,
	"ctrl": true, "control": true,
	"alt": true, "option": true,
	"shift": true,
	"fn": true,
}

var knownMidiTypes = map[string]bool{
	"note_on": true, "note_off": true, "cc": true, "pc": true,
}

// Validate checks that an action tree is well formed. modeCount bounds the
// targets of mode changes and mode conditions. Every problem found is
// returned as a *FieldError rooted at path.
func (a *Action) Validate(path string, modeCount int) []error {
	var errs []error
	a.validate(path, modeCount, 0, &errs)
	return errs
}

func (a *Action) validate(path string, modeCount, depth int, errs *[]error) {
	fail := func(format string, args ...any) {
		*errs = append(*errs, &FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if depth > MaxDepth {
		fail("actions nested deeper than %d levels", MaxDepth)
		return
	}

	switch a.Type {
	case ActionTypeKeystroke:
		if strings.TrimSpace(a.Key) == "" {
			fail("keystroke needs a key")
		}
		for _, m := range a.Modifiers {
			if !knownModifiers[strings.ToLower(m)] {
				fail("unknown modifier %q", m)
			}
		}

	case ActionTypeText:
		if a.Text == "" {
			fail("text action needs text")
		}

	case ActionTypeLaunch:
		if strings.TrimSpace(a.App) == "" {
			fail("launch action needs an app")
		}

	case ActionTypeShell:
		if strings.TrimSpace(a.Command) == "" {
			fail("empty command")
		}

	case ActionTypeVolume:
		if a.Volume == nil {
			fail("volume action needs a volume operation")
			break
		}
		switch a.Volume.Op {
		case VolumeUp, VolumeDown, VolumeMute, VolumeUnmute, VolumeToggle:
		case VolumeSet:
			if a.Volume.Amount < 0 || a.Volume.Amount > 100 {
				fail("volume level %d out of range 0-100", a.Volume.Amount)
			}
		default:
			fail("unknown volume operation %q", a.Volume.Op)
		}

	case ActionTypeModeChange:
		if a.Mode < 0 || a.Mode >= modeCount {
			fail("mode %d out of range (have %d modes)", a.Mode, modeCount)
		}

	case ActionTypeDelay:
		if a.DurationMS < 0 {
			fail("delay cannot be negative")
		}

	case ActionTypeMouseClick:
		switch a.Button {
		case MouseLeft, MouseRight, MouseMiddle:
		case "":
			fail("mouse click needs a button")
		default:
			fail("unknown mouse button %q", a.Button)
		}

	case ActionTypeSendMidi:
		if a.Midi == nil {
			fail("send_midi needs a midi message")
			break
		}
		if !knownMidiTypes[a.Midi.Type] {
			fail("unknown midi message type %q", a.Midi.Type)
		}
		if a.Midi.Channel < 0 || a.Midi.Channel > 16 {
			fail("midi channel %d out of range 1-16", a.Midi.Channel)
		}
		for name, v := range map[string]int{
			"note": a.Midi.Note, "velocity": a.Midi.Velocity, "controller": a.Midi.Controller,
			"value": a.Midi.Value, "program": a.Midi.Program,
		} {
			if v < 0 || v > 127 {
				fail("midi %s %d out of range 0-127", name, v)
			}
		}

	case ActionTypeSequence:
		if len(a.Actions) == 0 {
			fail("sequence has no actions")
		}
		for i := range a.Actions {
			a.Actions[i].validate(fmt.Sprintf("%s.actions[%d]", path, i), modeCount, depth+1, errs)
		}

	case ActionTypeRepeat:
		if a.Count < 1 || a.Count > MaxRepeat {
			fail("repeat count %d out of range 1-%d", a.Count, MaxRepeat)
		}
		if a.Action == nil {
			fail("repeat needs an action")
			break
		}
		a.Action.validate(path+".action", modeCount, depth+1, errs)

	case ActionTypeConditional:
		if a.Condition == nil {
			fail("conditional needs a condition")
		} else {
			a.Condition.validate(path+".condition", modeCount, errs)
		}
		if a.Then == nil {
			fail("conditional needs a then branch")
		} else {
			a.Then.validate(path+".then", modeCount, depth+1, errs)
		}
		if a.Else != nil {
			a.Else.validate(path+".else", modeCount, depth+1, errs)
		}

	case "":
		fail("missing action type")

	default:
		fail("unknown action type %q", a.Type)
	}
}

func (c *Condition) validate(path string, modeCount int, errs *[]error) {
	fail := func(format string, args ...any) {
		*errs = append(*errs, &FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	switch c.Type {
	case ConditionAppActive:
		if strings.TrimSpace(c.App) == "" {
			fail("app_active needs an app")
		}
	case ConditionTimeRange:
		if _, err := parseClock(c.Start); err != nil {
			fail("start: %v", err)
		}
		if _, err := parseClock(c.End); err != nil {
			fail("end: %v", err)
		}
	case ConditionModeEquals:
		if c.Mode < 0 || c.Mode >= modeCount {
			fail("mode %d out of range (have %d modes)", c.Mode, modeCount)
		}
	default:
		fail("unknown condition type %q", c.Type)
	}
}
