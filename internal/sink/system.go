// Package sink implements the action sink: the boundary where mapped actions
// become keystrokes, app launches, shell commands, volume changes, clicks and
// outgoing MIDI on the host system.
package sink

import (
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"gitlab.com/gomidi/midi/v2"

	"github.com/PixPMusic/gopher-gesture/internal/actions"
	internalmidi "github.com/PixPMusic/gopher-gesture/internal/midi"
)

// MidiSender writes a message to a named output port
type MidiSender interface {
	Send(port string, msg midi.Message) error
}

// System executes actions on the host using the platform's command line
// tools: osascript on macOS, xdotool and pactl on Linux, PowerShell on
// Windows.
type System struct {
	runner   Runner
	goos     string
	lookPath func(string) bool
	midi     MidiSender
	outPort  string
	logger   *slog.Logger
}

// Option configures a System sink
type Option func(*System)

// WithRunner replaces the program runner
func WithRunner(r Runner) Option {
	return func(s *System) { s.runner = r }
}

// WithGOOS overrides the detected platform
func WithGOOS(goos string) Option {
	return func(s *System) { s.goos = goos }
}

// WithLookPath replaces the PATH lookup used to find applications
func WithLookPath(f func(string) bool) Option {
	return func(s *System) { s.lookPath = f }
}

// WithMidi enables send_midi actions. defaultPort is used when an action
// names no port.
func WithMidi(sender MidiSender, defaultPort string) Option {
	return func(s *System) {
		s.midi = sender
		s.outPort = defaultPort
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *System) { s.logger = logger }
}

// NewSystem creates a sink for the current platform
func NewSystem(opts ...Option) *System {
	s := &System{
		runner:   ExecRunner{},
		goos:     runtime.GOOS,
		lookPath: LookPath,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *System) unsupported(what string) error {
	return unsupported(what, s.goos)
}

func unsupported(what, goos string) error {
	return fault.New(fmt.Sprintf("%s is not supported on %s", what, goos), ftag.With(ftag.InvalidArgument))
}

func (s *System) run(name string, args ...string) (string, error) {
	s.logger.Debug("running", "program", name, "args", args)
	return s.runner.Run(name, args...)
}

func (s *System) osascript(script string) error {
	_, err := s.run("osascript", "-e", script)
	return err
}

func (s *System) ExecuteKeystroke(key string, modifiers []string) error {
	switch s.goos {
	case "darwin":
		script, err := macKeystrokeScript(key, modifiers)
		if err != nil {
			return err
		}
		return s.osascript(script)
	case "linux":
		chord, err := xdotoolChord(key, modifiers)
		if err != nil {
			return err
		}
		_, err = s.run("xdotool", "key", "--clearmodifiers", chord)
		return err
	}
	return s.unsupported("keystroke")
}

func (s *System) ExecuteText(text string) error {
	switch s.goos {
	case "darwin":
		return s.osascript(`tell application "System Events" to keystroke ` + appleScriptString(text))
	case "linux":
		_, err := s.run("xdotool", "type", "--delay", "0", "--", text)
		return err
	}
	return s.unsupported("text entry")
}

func (s *System) ExecuteLaunch(app string) error {
	switch s.goos {
	case "darwin":
		if _, err := s.run("open", "-a", app); err != nil {
			return fault.Wrap(fmt.Errorf("%w: %s: %v", actions.ErrAppNotFound, app, err),
				fmsg.With("cannot launch application"),
				ftag.With(ftag.NotFound))
		}
		return nil
	case "linux":
		if !s.lookPath(app) {
			return fault.Wrap(fmt.Errorf("%w: %s", actions.ErrAppNotFound, app),
				fmsg.With("cannot launch application"),
				ftag.With(ftag.NotFound))
		}
		_, err := s.run("setsid", "-f", app)
		return err
	case "windows":
		_, err := s.run("cmd", "/c", "start", "", app)
		return err
	}
	return s.unsupported("launch")
}

func (s *System) ExecuteShell(command string) error {
	var err error
	switch s.goos {
	case "windows":
		_, err = s.run("powershell", "-NoProfile", "-NonInteractive", "-Command", command)
	case "darwin":
		shell := "/bin/bash"
		if s.lookPath("zsh") {
			shell = "/bin/zsh"
		}
		_, err = s.run(shell, "-c", command)
	case "linux":
		_, err = s.run("/bin/bash", "-c", command)
	default:
		return s.unsupported("shell")
	}
	return err
}

func (s *System) ExecuteVolume(op actions.VolumeOp) error {
	switch s.goos {
	case "darwin":
		script, err := macVolumeScript(op)
		if err != nil {
			return err
		}
		return s.osascript(script)
	case "linux":
		args, err := pactlArgs(op)
		if err != nil {
			return err
		}
		_, err = s.run("pactl", args...)
		return err
	}
	return s.unsupported("volume control")
}

func macVolumeScript(op actions.VolumeOp) (string, error) {
	const current = "output volume of (get volume settings)"
	switch op.Op {
	case actions.VolumeUp:
		return fmt.Sprintf("set volume output volume (%s + %d)", current, step(op)), nil
	case actions.VolumeDown:
		return fmt.Sprintf("set volume output volume (%s - %d)", current, step(op)), nil
	case actions.VolumeSet:
		return fmt.Sprintf("set volume output volume %d", op.Amount), nil
	case actions.VolumeMute:
		return "set volume with output muted", nil
	case actions.VolumeUnmute:
		return "set volume without output muted", nil
	case actions.VolumeToggle:
		return "set volume output muted (not (output muted of (get volume settings)))", nil
	}
	return "", fmt.Errorf("unknown volume operation %q", op.Op)
}

func pactlArgs(op actions.VolumeOp) ([]string, error) {
	const sinkName = "@DEFAULT_SINK@"
	switch op.Op {
	case actions.VolumeUp:
		return []string{"set-sink-volume", sinkName, "+" + strconv.Itoa(step(op)) + "%"}, nil
	case actions.VolumeDown:
		return []string{"set-sink-volume", sinkName, "-" + strconv.Itoa(step(op)) + "%"}, nil
	case actions.VolumeSet:
		return []string{"set-sink-volume", sinkName, strconv.Itoa(op.Amount) + "%"}, nil
	case actions.VolumeMute:
		return []string{"set-sink-mute", sinkName, "1"}, nil
	case actions.VolumeUnmute:
		return []string{"set-sink-mute", sinkName, "0"}, nil
	case actions.VolumeToggle:
		return []string{"set-sink-mute", sinkName, "toggle"}, nil
	}
	return nil, fmt.Errorf("unknown volume operation %q", op.Op)
}

// step is the relative change, defaulting to 5 percent
func step(op actions.VolumeOp) int {
	if op.Amount <= 0 {
		return 5
	}
	return op.Amount
}

var xdotoolButtons = map[actions.MouseButton]string{
	actions.MouseLeft:   "1",
	actions.MouseMiddle: "2",
	actions.MouseRight:  "3",
}

var cliclickButtons = map[actions.MouseButton]string{
	actions.MouseLeft:  "c",
	actions.MouseRight: "rc",
}

func (s *System) ExecuteMouse(button actions.MouseButton, at *actions.Point) error {
	switch s.goos {
	case "linux":
		b, ok := xdotoolButtons[button]
		if !ok {
			return fmt.Errorf("unknown mouse button %q", button)
		}
		args := []string{"click", b}
		if at != nil {
			args = append([]string{"mousemove", strconv.Itoa(at.X), strconv.Itoa(at.Y)}, args...)
		}
		_, err := s.run("xdotool", args...)
		return err
	case "darwin":
		// macOS has no built-in click tool; cliclick is the common choice
		b, ok := cliclickButtons[button]
		if !ok {
			return s.unsupported(string(button) + " click")
		}
		if !s.lookPath("cliclick") {
			return fault.Wrap(fmt.Errorf("%w: cliclick", actions.ErrAppNotFound),
				fmsg.WithDesc("cliclick not installed", "Install cliclick to use mouse_click actions on macOS"))
		}
		pos := "."
		if at != nil {
			pos = strconv.Itoa(at.X) + "," + strconv.Itoa(at.Y)
		}
		_, err := s.run("cliclick", b+":"+pos)
		return err
	}
	return s.unsupported("mouse click")
}

func (s *System) ExecuteMidi(msg actions.MidiMessage) error {
	if s.midi == nil {
		return s.unsupported("send_midi without a MIDI output")
	}
	port := strings.TrimSpace(msg.Port)
	if port == "" {
		port = s.outPort
	}
	if port == "" {
		return fmt.Errorf("no output port for %s", msg.Type)
	}

	wire, err := internalmidi.Encode(msg)
	if err != nil {
		return err
	}
	return s.midi.Send(port, wire)
}
