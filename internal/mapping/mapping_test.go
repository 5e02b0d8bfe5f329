package mapping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PixPMusic/gopher-gesture/internal/actions"
	"github.com/PixPMusic/gopher-gesture/internal/event"
)

func u8(v uint8) *uint8 { return &v }
func intp(v int) *int   { return &v }

func TestTrigger_Matches(t *testing.T) {
	tests := []struct {
		name    string
		trigger Trigger
		ev      event.ProcessedEvent
		want    bool
	}{
		{
			name:    "note wildcard",
			trigger: Trigger{Type: TriggerNote},
			ev:      event.ProcessedEvent{Type: event.PadPressed, Note: 12},
			want:    true,
		},
		{
			name:    "note mismatch",
			trigger: Trigger{Type: TriggerNote, Note: u8(60)},
			ev:      event.ProcessedEvent{Type: event.PadPressed, Note: 61},
			want:    false,
		},
		{
			name:    "wrong gesture",
			trigger: Trigger{Type: TriggerShortPress, Note: u8(60)},
			ev:      event.ProcessedEvent{Type: event.LongPress, Note: 60},
			want:    false,
		},
		{
			name:    "velocity inside range",
			trigger: Trigger{Type: TriggerVelocityRange, Note: u8(60), VelocityMin: u8(41), VelocityMax: u8(80)},
			ev:      event.ProcessedEvent{Type: event.PadPressed, Note: 60, Velocity: 80},
			want:    true,
		},
		{
			name:    "velocity outside range",
			trigger: Trigger{Type: TriggerVelocityRange, Note: u8(60), VelocityMin: u8(41), VelocityMax: u8(80)},
			ev:      event.ProcessedEvent{Type: event.PadPressed, Note: 60, Velocity: 81},
			want:    false,
		},
		{
			name:    "velocity level",
			trigger: Trigger{Type: TriggerNote, Level: "hard"},
			ev:      event.ProcessedEvent{Type: event.PadPressed, Note: 1, Velocity: 120, Level: event.Hard},
			want:    true,
		},
		{
			name:    "long press minimum duration",
			trigger: Trigger{Type: TriggerLongPress, Note: u8(5), MinDurationMS: intp(3000)},
			ev:      event.ProcessedEvent{Type: event.LongPress, Note: 5, Duration: 2500 * time.Millisecond},
			want:    false,
		},
		{
			name:    "double tap narrower window",
			trigger: Trigger{Type: TriggerDoubleTap, Note: u8(5), WindowMS: intp(150)},
			ev:      event.ProcessedEvent{Type: event.DoubleTap, Note: 5, Duration: 200 * time.Millisecond},
			want:    false,
		},
		{
			name:    "chord exact set in any order",
			trigger: Trigger{Type: TriggerChord, Notes: []int{64, 60, 67}},
			ev:      event.ProcessedEvent{Type: event.ChordDetected, Notes: []uint8{60, 64, 67}},
			want:    true,
		},
		{
			name:    "chord subset does not match",
			trigger: Trigger{Type: TriggerChord, Notes: []int{60, 64}},
			ev:      event.ProcessedEvent{Type: event.ChordDetected, Notes: []uint8{60, 64, 67}},
			want:    false,
		},
		{
			name:    "encoder direction",
			trigger: Trigger{Type: TriggerEncoder, Controller: u8(1), Direction: "backward"},
			ev:      event.ProcessedEvent{Type: event.EncoderTurned, Controller: 1, Direction: event.Forward},
			want:    false,
		},
		{
			name:    "encoder clockwise alias",
			trigger: Trigger{Type: TriggerEncoder, Controller: u8(1), Direction: "cw"},
			ev:      event.ProcessedEvent{Type: event.EncoderTurned, Controller: 1, Direction: event.Forward},
			want:    true,
		},
		{
			name:    "pitch bend upper half",
			trigger: Trigger{Type: TriggerPitchBend, ValueMin: intp(8192)},
			ev:      event.ProcessedEvent{Type: event.PitchBendMoved, Bend: 9000},
			want:    true,
		},
		{
			name:    "program change",
			trigger: Trigger{Type: TriggerProgramChange, Program: u8(3)},
			ev:      event.ProcessedEvent{Type: event.ProgramChanged, Program: 3},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.trigger.Matches(tt.ev))
		})
	}
}

func testModes() ([]Mode, []Mapping) {
	modes := []Mode{
		{
			Name: "Default",
			Mappings: []Mapping{
				NewMapping("copy", Trigger{Type: TriggerShortPress, Note: u8(60)}, actions.Keystroke("c", "cmd")),
				NewMapping("shadowed", Trigger{Type: TriggerShortPress, Note: u8(60)}, actions.Text("never")),
			},
		},
		{Name: "Media"},
	}
	global := []Mapping{
		NewMapping("global copy", Trigger{Type: TriggerShortPress, Note: u8(60)}, actions.Text("global")),
		NewMapping("next mode", Trigger{Type: TriggerLongPress}, actions.ModeChange(1)),
	}
	return modes, global
}

func TestResolve_ModeBeforeGlobal(t *testing.T) {
	modes, global := testModes()
	ev := event.ProcessedEvent{Type: event.ShortPress, Note: 60}

	res, ok := Resolve(modes, global, ev, 0)
	require.True(t, ok)
	assert.Equal(t, ScopeMode, res.Scope)
	assert.Equal(t, 0, res.Index)
	assert.Equal(t, "copy", res.Mapping.Description)

	res, ok = Resolve(modes, global, ev, 1)
	require.True(t, ok)
	assert.Equal(t, ScopeGlobal, res.Scope)
	assert.Equal(t, "global copy", res.Mapping.Description)
}

func TestResolve_NoMatch(t *testing.T) {
	modes, global := testModes()
	_, ok := Resolve(modes, global, event.ProcessedEvent{Type: event.PadPressed, Note: 1}, 0)
	assert.False(t, ok)
}

func TestResolve_OutOfRangeModeUsesGlobal(t *testing.T) {
	modes, global := testModes()
	res, ok := Resolve(modes, global, event.ProcessedEvent{Type: event.ShortPress, Note: 60}, 9)
	require.True(t, ok)
	assert.Equal(t, ScopeGlobal, res.Scope)
}

func TestResolve_Deterministic(t *testing.T) {
	modes, global := testModes()
	ev := event.ProcessedEvent{Type: event.LongPress, Note: 3, Duration: 2 * time.Second}

	first, ok1 := Resolve(modes, global, ev, 0)
	second, ok2 := Resolve(modes, global, ev, 0)
	assert.Equal(t, ok1, ok2)
	assert.Same(t, first.Mapping, second.Mapping)
	assert.Equal(t, first, second)
}

func TestTrigger_Validate(t *testing.T) {
	tests := []struct {
		name    string
		trigger Trigger
		wantErr bool
	}{
		{"valid note", Trigger{Type: TriggerNote, Note: u8(127)}, false},
		{"note out of range", Trigger{Type: TriggerNote, Note: u8(128)}, true},
		{"missing type", Trigger{}, true},
		{"unknown type", Trigger{Type: "wiggle"}, true},
		{"inverted velocity", Trigger{Type: TriggerNote, VelocityMin: u8(90), VelocityMax: u8(10)}, true},
		{"velocity range without bounds", Trigger{Type: TriggerVelocityRange}, true},
		{"bad level", Trigger{Type: TriggerNote, Level: "loud"}, true},
		{"single note chord", Trigger{Type: TriggerChord, Notes: []int{60}}, true},
		{"duplicate chord note", Trigger{Type: TriggerChord, Notes: []int{60, 60}}, true},
		{"bad direction", Trigger{Type: TriggerEncoder, Direction: "sideways"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.trigger.Validate("trigger")
			if tt.wantErr {
				assert.NotEmpty(t, errs)
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}
