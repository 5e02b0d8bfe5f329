package config

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Op names the stage at which loading a config failed
type Op string

const (
	OpRead     Op = "read"
	OpParse    Op = "parse"
	OpValidate Op = "validate"
)

// Error is a failure to load a config
type Error struct {
	Path string
	Op   Op
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("config %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ValidationErrors lists every problem found in a config
type ValidationErrors []error

func (v ValidationErrors) Error() string {
	if len(v) == 1 {
		return v[0].Error()
	}
	msgs := make([]string, len(v))
	for i, err := range v {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d problems:\n  %s", len(v), strings.Join(msgs, "\n  "))
}

func (v ValidationErrors) Unwrap() []error {
	return v
}

// SettingError is an out-of-range advanced setting
type SettingError struct {
	Field   string
	Message string
}

func (e *SettingError) Error() string {
	return "advanced_settings." + e.Field + ": " + e.Message
}

// Validate checks the whole config and fills in missing IDs. It returns a
// ValidationErrors listing every problem, or nil.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.Device.ID == "" {
		c.Device.ID = uuid.New().String()
	}
	if c.Device.Channel < -1 || c.Device.Channel > 15 {
		errs = append(errs, &SettingError{Field: "channel", Message: fmt.Sprintf("%d out of range -1..15", c.Device.Channel)})
	}

	if !slices.Contains(indicators, c.Device.Indicator) {
		errs = append(errs, &SettingError{Field: "indicator", Message: fmt.Sprintf("unknown indicator %q", c.Device.Indicator)})
	}

	errs = append(errs, c.Advanced.validate()...)

	if len(c.Modes) == 0 {
		errs = append(errs, errors.New("modes: at least one mode is required"))
	}
	for i := range c.Modes {
		mode := &c.Modes[i]
		if strings.TrimSpace(mode.Name) == "" {
			errs = append(errs, fmt.Errorf("modes[%d].name: mode needs a name", i))
		}
		if mode.Color != "" && !colorPattern.MatchString(mode.Color) {
			errs = append(errs, fmt.Errorf("modes[%d].color: %q is not #RRGGBB", i, mode.Color))
		}
		for j := range mode.Mappings {
			m := &mode.Mappings[j]
			if m.ID == "" {
				m.ID = uuid.New().String()
			}
			errs = append(errs, m.Validate(fmt.Sprintf("modes[%d].mappings[%d]", i, j), len(c.Modes))...)
		}
	}
	for j := range c.GlobalMappings {
		m := &c.GlobalMappings[j]
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		errs = append(errs, m.Validate(fmt.Sprintf("global_mappings[%d]", j), len(c.Modes))...)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (s AdvancedSettings) validate() []error {
	var errs []error
	positive := func(field string, v int) {
		if v <= 0 {
			errs = append(errs, &SettingError{Field: field, Message: fmt.Sprintf("%d must be positive", v)})
		}
	}
	positive("chord_timeout_ms", s.ChordTimeoutMS)
	positive("double_tap_timeout_ms", s.DoubleTapTimeoutMS)
	positive("hold_threshold_ms", s.HoldThresholdMS)
	positive("short_threshold_ms", s.ShortThresholdMS)

	if s.ShortThresholdMS >= s.HoldThresholdMS {
		errs = append(errs, &SettingError{Field: "short_threshold_ms", Message: "must be below hold_threshold_ms"})
	}
	if s.VelocitySoftMax >= s.VelocityMediumMax {
		errs = append(errs, &SettingError{Field: "velocity_soft_max", Message: "must be below velocity_medium_max"})
	}
	if s.VelocityMediumMax >= 127 {
		errs = append(errs, &SettingError{Field: "velocity_medium_max", Message: fmt.Sprintf("%d leaves no hard velocities, must be below 127", s.VelocityMediumMax)})
	}
	return errs
}
