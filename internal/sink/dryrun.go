package sink

import (
	"log/slog"

	"github.com/PixPMusic/gopher-gesture/internal/actions"
)

// DryRun logs actions instead of performing them
type DryRun struct {
	logger *slog.Logger
}

// NewDryRun creates a sink that only logs
func NewDryRun(logger *slog.Logger) *DryRun {
	if logger == nil {
		logger = slog.Default()
	}
	return &DryRun{logger: logger.With("sink", "dry-run")}
}

func (d *DryRun) ExecuteKeystroke(key string, modifiers []string) error {
	d.logger.Info("keystroke", "key", key, "modifiers", modifiers)
	return nil
}

func (d *DryRun) ExecuteText(text string) error {
	d.logger.Info("text", "text", text)
	return nil
}

func (d *DryRun) ExecuteLaunch(app string) error {
	d.logger.Info("launch", "app", app)
	return nil
}

func (d *DryRun) ExecuteShell(command string) error {
	d.logger.Info("shell", "command", command)
	return nil
}

func (d *DryRun) ExecuteVolume(op actions.VolumeOp) error {
	d.logger.Info("volume", "op", op.Op, "amount", op.Amount)
	return nil
}

func (d *DryRun) ExecuteMouse(button actions.MouseButton, at *actions.Point) error {
	if at == nil {
		d.logger.Info("mouse click", "button", button)
		return nil
	}
	d.logger.Info("mouse click", "button", button, "x", at.X, "y", at.Y)
	return nil
}

func (d *DryRun) ExecuteMidi(msg actions.MidiMessage) error {
	d.logger.Info("send midi", "port", msg.Port, "type", msg.Type, "channel", msg.Channel)
	return nil
}
