// Package config holds the gesture engine configuration: the device to
// listen on, the mode list, the global mappings and the detector timing.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/PixPMusic/gopher-gesture/internal/actions"
	"github.com/PixPMusic/gopher-gesture/internal/detect"
	"github.com/PixPMusic/gopher-gesture/internal/event"
	"github.com/PixPMusic/gopher-gesture/internal/mapping"
)

// DeviceConfig identifies the MIDI device the engine listens to
type DeviceConfig struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	InPort  string `json:"in_port,omitempty"`  // MIDI input port name (substring match)
	OutPort string `json:"out_port,omitempty"` // MIDI output port for send_midi actions
	Channel int    `json:"channel"`            // 0-15, or -1 for any channel

	// Indicator lights the device's LEDs in the active mode's color:
	// "launchpad_s", "launchpad_mk3", or empty for none
	Indicator string `json:"indicator,omitempty"`
}

var indicators = []string{"", "launchpad_s", "launchpad_mk3"}

// NewDeviceConfig creates a new device config with a generated ID
func NewDeviceConfig() DeviceConfig {
	return DeviceConfig{
		ID:      uuid.New().String(),
		Name:    "New Device",
		Channel: -1,
	}
}

// AcceptsChannel reports whether messages on ch should be processed
func (d DeviceConfig) AcceptsChannel(ch uint8) bool {
	return d.Channel < 0 || int(ch) == d.Channel
}

// AdvancedSettings tunes the gesture detectors
type AdvancedSettings struct {
	ChordTimeoutMS     int   `json:"chord_timeout_ms"`
	DoubleTapTimeoutMS int   `json:"double_tap_timeout_ms"`
	HoldThresholdMS    int   `json:"hold_threshold_ms"`
	ShortThresholdMS   int   `json:"short_threshold_ms"`
	VelocitySoftMax    uint8 `json:"velocity_soft_max"`
	VelocityMediumMax  uint8 `json:"velocity_medium_max"`
}

// DefaultSettings returns the stock detector timing
func DefaultSettings() AdvancedSettings {
	return AdvancedSettings{
		ChordTimeoutMS:     100,
		DoubleTapTimeoutMS: 300,
		HoldThresholdMS:    2000,
		ShortThresholdMS:   200,
		VelocitySoftMax:    40,
		VelocityMediumMax:  80,
	}
}

func (s AdvancedSettings) ChordTimeout() time.Duration {
	return time.Duration(s.ChordTimeoutMS) * time.Millisecond
}

func (s AdvancedSettings) DoubleTapTimeout() time.Duration {
	return time.Duration(s.DoubleTapTimeoutMS) * time.Millisecond
}

func (s AdvancedSettings) HoldThreshold() time.Duration {
	return time.Duration(s.HoldThresholdMS) * time.Millisecond
}

func (s AdvancedSettings) ShortThreshold() time.Duration {
	return time.Duration(s.ShortThresholdMS) * time.Millisecond
}

// Thresholds converts the settings into the timing detector's form
func (s AdvancedSettings) Thresholds() detect.Thresholds {
	return detect.Thresholds{
		Short:     s.ShortThreshold(),
		Hold:      s.HoldThreshold(),
		DoubleTap: s.DoubleTapTimeout(),
	}
}

// Classify maps a velocity to its level using these settings
func (s AdvancedSettings) Classify(velocity uint8) event.VelocityLevel {
	return detect.Classify(velocity, s.VelocitySoftMax, s.VelocityMediumMax)
}

// Config holds application configuration. A loaded Config is treated as
// immutable; reloading produces a new value.
type Config struct {
	Device         DeviceConfig      `json:"device"`
	Modes          []mapping.Mode    `json:"modes"`
	GlobalMappings []mapping.Mapping `json:"global_mappings,omitempty"`
	Advanced       AdvancedSettings  `json:"advanced_settings"`
}

// Default returns a config with one empty mode and stock settings
func Default() *Config {
	return &Config{
		Device:   DeviceConfig{Channel: -1},
		Modes:    []mapping.Mode{{Name: "Default"}},
		Advanced: DefaultSettings(),
	}
}

// Starter returns the config written by -init: a couple of modes with
// mappings exercising the common gesture types.
func Starter() *Config {
	note := func(n uint8) *uint8 { return &n }
	cc := note(1)

	cfg := Default()
	cfg.Device = NewDeviceConfig()
	cfg.Modes = []mapping.Mode{
		{
			Name:  "Default",
			Color: "#4CAF50",
			Mappings: []mapping.Mapping{
				mapping.NewMapping("Copy", mapping.Trigger{Type: mapping.TriggerShortPress, Note: note(36)},
					actions.Keystroke("c", "cmd")),
				mapping.NewMapping("Paste", mapping.Trigger{Type: mapping.TriggerShortPress, Note: note(37)},
					actions.Keystroke("v", "cmd")),
				mapping.NewMapping("Open terminal", mapping.Trigger{Type: mapping.TriggerLongPress, Note: note(36)},
					actions.Launch("Terminal")),
				mapping.NewMapping("Undo twice", mapping.Trigger{Type: mapping.TriggerDoubleTap, Note: note(38)},
					actions.Repeat(actions.Keystroke("z", "cmd"), 2)),
			},
		},
		{
			Name:  "Media",
			Color: "#2196F3",
			Mappings: []mapping.Mapping{
				mapping.NewMapping("Volume up", mapping.Trigger{Type: mapping.TriggerEncoder, Controller: cc, Direction: "forward"},
					actions.Volume(actions.VolumeOp{Op: actions.VolumeUp, Amount: 5})),
				mapping.NewMapping("Volume down", mapping.Trigger{Type: mapping.TriggerEncoder, Controller: cc, Direction: "backward"},
					actions.Volume(actions.VolumeOp{Op: actions.VolumeDown, Amount: 5})),
				mapping.NewMapping("Mute", mapping.Trigger{Type: mapping.TriggerShortPress, Note: note(36)},
					actions.Volume(actions.VolumeOp{Op: actions.VolumeToggle})),
			},
		},
	}
	cfg.GlobalMappings = []mapping.Mapping{
		mapping.NewMapping("Next mode", mapping.Trigger{Type: mapping.TriggerChord, Notes: []int{36, 37}},
			actions.ModeChange(1)),
		mapping.NewMapping("Default mode", mapping.Trigger{Type: mapping.TriggerChord, Notes: []int{36, 38}},
			actions.ModeChange(0)),
	}
	return cfg
}

// Resolve finds the mapping for a gesture in the given mode
func (c *Config) Resolve(ev event.ProcessedEvent, mode int) (mapping.Resolution, bool) {
	return mapping.Resolve(c.Modes, c.GlobalMappings, ev, mode)
}

// ModeCount returns the number of configured modes
func (c *Config) ModeCount() int {
	return len(c.Modes)
}

// ModeName returns the name of mode i, or "" when out of range
func (c *Config) ModeName(i int) string {
	if i < 0 || i >= len(c.Modes) {
		return ""
	}
	return c.Modes[i].Name
}

// configDir returns the platform-appropriate config directory
func configDir() (string, error) {
	configHome, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configHome, "gopher-gesture"), nil
}

// DefaultPath returns the full path to the default config file
func DefaultPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
