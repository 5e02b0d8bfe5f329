package actions

import (
	"fmt"
	"strconv"
	"strings"
)

// ConditionType selects what a condition checks
type ConditionType string

const (
	ConditionAppActive  ConditionType = "app_active"
	ConditionTimeRange  ConditionType = "time_range"
	ConditionModeEquals ConditionType = "mode_equals"
)

// Condition is evaluated each time its conditional runs; results are never
// cached.
type Condition struct {
	Type ConditionType `json:"type"`

	// AppActive: case-insensitive application name
	App string `json:"app,omitempty"`

	// TimeRange: "HH:MM" local time, end exclusive. A range whose end is
	// before its start wraps past midnight; equal bounds cover the whole day.
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`

	// ModeEquals
	Mode int `json:"mode,omitempty"`

	// Not inverts the result
	Not bool `json:"not,omitempty"`
}

// AppActive creates a condition on the frontmost application
func AppActive(name string) Condition {
	return Condition{Type: ConditionAppActive, App: name}
}

// TimeRange creates a condition on the time of day
func TimeRange(start, end string) Condition {
	return Condition{Type: ConditionTimeRange, Start: start, End: end}
}

// ModeEquals creates a condition on the active mode
func ModeEquals(index int) Condition {
	return Condition{Type: ConditionModeEquals, Mode: index}
}

// Evaluate checks the condition against the environment and current mode
func (c *Condition) Evaluate(env Environment, currentMode int) (bool, error) {
	var ok bool
	switch c.Type {
	case ConditionAppActive:
		if env == nil {
			return false, fmt.Errorf("no environment to query the active app")
		}
		app, err := env.ActiveApp()
		if err != nil {
			return false, fmt.Errorf("querying active app: %w", err)
		}
		ok = strings.EqualFold(strings.TrimSpace(app), c.App)

	case ConditionTimeRange:
		if env == nil {
			return false, fmt.Errorf("no environment to query the time")
		}
		start, err := parseClock(c.Start)
		if err != nil {
			return false, err
		}
		end, err := parseClock(c.End)
		if err != nil {
			return false, err
		}
		now := env.Now()
		m := now.Hour()*60 + now.Minute()
		switch {
		case start == end:
			ok = true
		case start < end:
			ok = m >= start && m < end
		default:
			ok = m >= start || m < end
		}

	case ConditionModeEquals:
		ok = currentMode == c.Mode

	default:
		return false, fmt.Errorf("unknown condition type %q", c.Type)
	}

	if c.Not {
		ok = !ok
	}
	return ok, nil
}

// parseClock converts "HH:MM" to minutes after midnight
func parseClock(s string) (int, error) {
	h, m, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour*60 + minute, nil
}
