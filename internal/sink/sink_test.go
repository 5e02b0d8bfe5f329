package sink

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"

	"github.com/PixPMusic/gopher-gesture/internal/actions"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls  []call
	output string
	err    error
}

func (f *fakeRunner) Run(name string, args ...string) (string, error) {
	f.calls = append(f.calls, call{name, args})
	return f.output, f.err
}

func (f *fakeRunner) last(t *testing.T) call {
	t.Helper()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

type fakeSender struct {
	port string
	msg  midi.Message
}

func (f *fakeSender) Send(port string, msg midi.Message) error {
	f.port = port
	f.msg = msg
	return nil
}

func newSystem(goos string, r *fakeRunner, installed ...string) *System {
	return NewSystem(
		WithGOOS(goos),
		WithRunner(r),
		WithLookPath(func(name string) bool {
			for _, n := range installed {
				if n == name {
					return true
				}
			}
			return false
		}),
	)
}

func TestKeystroke(t *testing.T) {
	tests := []struct {
		name string
		goos string
		key  string
		mods []string
		want call
	}{
		{
			name: "mac character with modifiers",
			goos: "darwin",
			key:  "c",
			mods: []string{"cmd", "shift"},
			want: call{"osascript", []string{"-e", `tell application "System Events" to keystroke "c" using {command down, shift down}`}},
		},
		{
			name: "mac named key",
			goos: "darwin",
			key:  "Return",
			want: call{"osascript", []string{"-e", `tell application "System Events" to key code 36`}},
		},
		{
			name: "linux chord",
			goos: "linux",
			key:  "t",
			mods: []string{"ctrl", "shift"},
			want: call{"xdotool", []string{"key", "--clearmodifiers", "ctrl+shift+t"}},
		},
		{
			name: "linux named key",
			goos: "linux",
			key:  "page_down",
			want: call{"xdotool", []string{"key", "--clearmodifiers", "Next"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{}
			require.NoError(t, newSystem(tt.goos, r).ExecuteKeystroke(tt.key, tt.mods))
			assert.Equal(t, tt.want, r.last(t))
		})
	}
}

func TestKeystrokeInvalid(t *testing.T) {
	for _, goos := range []string{"darwin", "linux"} {
		r := &fakeRunner{}
		s := newSystem(goos, r)

		err := s.ExecuteKeystroke("not_a_key", nil)
		assert.ErrorIs(t, err, actions.ErrInvalidKey, goos)

		err = s.ExecuteKeystroke("a", []string{"hyper"})
		assert.ErrorIs(t, err, actions.ErrInvalidKey, goos)

		assert.Empty(t, r.calls, "nothing runs for an invalid key")
	}
}

func TestKeystrokeUnsupportedPlatform(t *testing.T) {
	r := &fakeRunner{}
	err := newSystem("plan9", r).ExecuteKeystroke("a", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan9")
	assert.Empty(t, r.calls)
}

func TestText(t *testing.T) {
	r := &fakeRunner{}
	require.NoError(t, newSystem("darwin", r).ExecuteText(`say "hi"`))
	assert.Equal(t, call{"osascript", []string{"-e", `tell application "System Events" to keystroke "say \"hi\""`}}, r.last(t))

	r = &fakeRunner{}
	require.NoError(t, newSystem("linux", r).ExecuteText("-n hello"))
	assert.Equal(t, call{"xdotool", []string{"type", "--delay", "0", "--", "-n hello"}}, r.last(t))
}

func TestLaunch(t *testing.T) {
	t.Run("linux installed", func(t *testing.T) {
		r := &fakeRunner{}
		require.NoError(t, newSystem("linux", r, "firefox").ExecuteLaunch("firefox"))
		assert.Equal(t, call{"setsid", []string{"-f", "firefox"}}, r.last(t))
	})

	t.Run("linux missing", func(t *testing.T) {
		r := &fakeRunner{}
		err := newSystem("linux", r).ExecuteLaunch("nonexistent")
		assert.ErrorIs(t, err, actions.ErrAppNotFound)
		assert.Empty(t, r.calls)
	})

	t.Run("mac open fails", func(t *testing.T) {
		r := &fakeRunner{err: errors.New("Unable to find application named 'Nope'")}
		err := newSystem("darwin", r).ExecuteLaunch("Nope")
		assert.ErrorIs(t, err, actions.ErrAppNotFound)
		assert.Equal(t, call{"open", []string{"-a", "Nope"}}, r.last(t))
	})
}

func TestShell(t *testing.T) {
	tests := []struct {
		goos      string
		installed []string
		want      call
	}{
		{"linux", nil, call{"/bin/bash", []string{"-c", "echo hi"}}},
		{"darwin", nil, call{"/bin/bash", []string{"-c", "echo hi"}}},
		{"darwin", []string{"zsh"}, call{"/bin/zsh", []string{"-c", "echo hi"}}},
		{"windows", nil, call{"powershell", []string{"-NoProfile", "-NonInteractive", "-Command", "echo hi"}}},
	}

	for _, tt := range tests {
		r := &fakeRunner{}
		require.NoError(t, newSystem(tt.goos, r, tt.installed...).ExecuteShell("echo hi"))
		assert.Equal(t, tt.want, r.last(t), tt.goos)
	}
}

func TestShellFailure(t *testing.T) {
	r := &fakeRunner{err: errors.New("exit status 1")}
	err := newSystem("linux", r).ExecuteShell("false")
	assert.EqualError(t, err, "exit status 1")
}

func TestVolume(t *testing.T) {
	tests := []struct {
		op    actions.VolumeOp
		linux []string
		mac   string
	}{
		{actions.VolumeOp{Op: actions.VolumeUp}, []string{"set-sink-volume", "@DEFAULT_SINK@", "+5%"}, "set volume output volume (output volume of (get volume settings) + 5)"},
		{actions.VolumeOp{Op: actions.VolumeDown, Amount: 10}, []string{"set-sink-volume", "@DEFAULT_SINK@", "-10%"}, "set volume output volume (output volume of (get volume settings) - 10)"},
		{actions.VolumeOp{Op: actions.VolumeSet, Amount: 40}, []string{"set-sink-volume", "@DEFAULT_SINK@", "40%"}, "set volume output volume 40"},
		{actions.VolumeOp{Op: actions.VolumeMute}, []string{"set-sink-mute", "@DEFAULT_SINK@", "1"}, "set volume with output muted"},
		{actions.VolumeOp{Op: actions.VolumeUnmute}, []string{"set-sink-mute", "@DEFAULT_SINK@", "0"}, "set volume without output muted"},
		{actions.VolumeOp{Op: actions.VolumeToggle}, []string{"set-sink-mute", "@DEFAULT_SINK@", "toggle"}, "set volume output muted (not (output muted of (get volume settings)))"},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			r := &fakeRunner{}
			require.NoError(t, newSystem("linux", r).ExecuteVolume(tt.op))
			assert.Equal(t, call{"pactl", tt.linux}, r.last(t))

			r = &fakeRunner{}
			require.NoError(t, newSystem("darwin", r).ExecuteVolume(tt.op))
			assert.Equal(t, call{"osascript", []string{"-e", tt.mac}}, r.last(t))
		})
	}
}

func TestVolumeUnknownOp(t *testing.T) {
	r := &fakeRunner{}
	assert.Error(t, newSystem("linux", r).ExecuteVolume(actions.VolumeOp{Op: "louder"}))
	assert.Empty(t, r.calls)
}

func TestMouse(t *testing.T) {
	r := &fakeRunner{}
	s := newSystem("linux", r)
	require.NoError(t, s.ExecuteMouse(actions.MouseRight, nil))
	assert.Equal(t, call{"xdotool", []string{"click", "3"}}, r.last(t))

	require.NoError(t, s.ExecuteMouse(actions.MouseLeft, &actions.Point{X: 10, Y: 20}))
	assert.Equal(t, call{"xdotool", []string{"mousemove", "10", "20", "click", "1"}}, r.last(t))

	r = &fakeRunner{}
	err := newSystem("darwin", r).ExecuteMouse(actions.MouseLeft, nil)
	assert.ErrorIs(t, err, actions.ErrAppNotFound, "cliclick missing")

	require.NoError(t, newSystem("darwin", r, "cliclick").ExecuteMouse(actions.MouseLeft, &actions.Point{X: 5, Y: 6}))
	assert.Equal(t, call{"cliclick", []string{"c:5,6"}}, r.last(t))
}

func TestMidi(t *testing.T) {
	sender := &fakeSender{}
	s := NewSystem(WithGOOS("linux"), WithRunner(&fakeRunner{}), WithMidi(sender, "Synth Out"))

	require.NoError(t, s.ExecuteMidi(actions.MidiMessage{Type: "cc", Channel: 2, Controller: 7, Value: 100}))
	assert.Equal(t, "Synth Out", sender.port)

	var ch, ctl, val uint8
	require.True(t, sender.msg.GetControlChange(&ch, &ctl, &val))
	assert.Equal(t, []uint8{1, 7, 100}, []uint8{ch, ctl, val})

	require.NoError(t, s.ExecuteMidi(actions.MidiMessage{Port: "Other", Type: "pc", Program: 3}))
	assert.Equal(t, "Other", sender.port)
}

func TestMidiWithoutOutput(t *testing.T) {
	s := NewSystem(WithGOOS("linux"), WithRunner(&fakeRunner{}))
	assert.Error(t, s.ExecuteMidi(actions.MidiMessage{Type: "cc"}))

	s = NewSystem(WithGOOS("linux"), WithRunner(&fakeRunner{}), WithMidi(&fakeSender{}, ""))
	err := s.ExecuteMidi(actions.MidiMessage{Type: "cc"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no output port"))
}

func TestDryRunNeverFails(t *testing.T) {
	d := NewDryRun(nil)
	assert.NoError(t, d.ExecuteKeystroke("a", []string{"cmd"}))
	assert.NoError(t, d.ExecuteText("hello"))
	assert.NoError(t, d.ExecuteLaunch("Nothing"))
	assert.NoError(t, d.ExecuteShell("rm -rf /"))
	assert.NoError(t, d.ExecuteVolume(actions.VolumeOp{Op: actions.VolumeMute}))
	assert.NoError(t, d.ExecuteMouse(actions.MouseLeft, &actions.Point{X: 1, Y: 2}))
	assert.NoError(t, d.ExecuteMidi(actions.MidiMessage{Type: "note_on"}))
}

func TestEnvironment(t *testing.T) {
	r := &fakeRunner{output: "firefox"}
	env := NewEnvironment(r)
	env.goos = "linux"

	app, err := env.ActiveApp()
	require.NoError(t, err)
	assert.Equal(t, "firefox", app)
	assert.Equal(t, call{"xdotool", []string{"getactivewindow", "getwindowclassname"}}, r.last(t))

	env.goos = "windows"
	_, err = env.ActiveApp()
	assert.Error(t, err)

	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	env.now = func() time.Time { return fixed }
	assert.Equal(t, fixed, env.Now())
}

func TestSinksImplementInterfaces(t *testing.T) {
	var _ actions.Sink = (*System)(nil)
	var _ actions.Sink = (*DryRun)(nil)
	var _ actions.Environment = (*Environment)(nil)
}
