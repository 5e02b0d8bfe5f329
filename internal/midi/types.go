package midi

import (
	"fmt"
	"strconv"
	"strings"
)

// IndicatorType selects how the active mode is shown on the device
type IndicatorType string

const (
	IndicatorNone         IndicatorType = ""
	IndicatorLaunchpadS   IndicatorType = "launchpad_s"   // red/green LEDs driven by velocity
	IndicatorLaunchpadMk3 IndicatorType = "launchpad_mk3" // RGB LEDs driven by SysEx
)

// PadColor represents an RGB color for a pad
type PadColor struct {
	R, G, B uint8 // 0-127 for each channel
}

// ParseColor reads a "#RRGGBB" string and scales it to the 0-127 MIDI range
func ParseColor(s string) (PadColor, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return PadColor{}, fmt.Errorf("color %q is not #RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return PadColor{}, fmt.Errorf("color %q is not #RRGGBB", s)
	}
	return PadColor{
		R: uint8(v>>16) >> 1,
		G: uint8(v>>8) >> 1,
		B: uint8(v) >> 1,
	}, nil
}

// IsOff reports whether the color is too dark to show
func (c PadColor) IsOff() bool {
	return c.R < 5 && c.G < 5 && c.B < 5
}
